package main

import (
	"context"
	"errors"

	"tiersweep/internal/audit"
	"tiersweep/internal/pipeline"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var scopeErr *pipeline.ScopeError
	if errors.As(err, &scopeErr) {
		lines = append(lines, "hint: check the credential profile, or log in again (e.g. aws sso login --profile <profile>).")
		return uniqueLines(lines)
	}

	var enumErr *pipeline.EnumerationError
	if errors.As(err, &enumErr) {
		lines = append(lines, "hint: verify the container name and that the session may list it; nothing was modified.")
		return uniqueLines(lines)
	}

	var writeErr *audit.WriteError
	if errors.As(err, &writeErr) {
		lines = append(lines, "hint: check that the audit directory is writable; objects may already have been migrated, see the run log.")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.Canceled) {
		lines = append(lines, "hint: the run was interrupted; unattempted objects are recorded as failed in the run history.")
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
