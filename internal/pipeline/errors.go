package pipeline

import "fmt"

// ScopeError reports that the provider session could not be scoped to the
// account the run targets. It always aborts the run before any read; a run
// against an ambiguous scope must never proceed.
type ScopeError struct {
	Want string
	Got  string
	Err  error
}

func (e *ScopeError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("session is scoped to account %s, want %s", e.Got, e.Want)
	}
	if e.Err != nil {
		return fmt.Sprintf("could not establish session scoped to account %s: %v", e.Want, e.Err)
	}
	return fmt.Sprintf("could not establish session scoped to account %s", e.Want)
}

func (e *ScopeError) Unwrap() error { return e.Err }

// EnumerationError wraps a failed container listing. A partial listing is
// unusable because confirmation needs a consistent full view, so this is
// always fatal.
type EnumerationError struct {
	Container string
	Err       error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to enumerate container %q: %v", e.Container, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }
