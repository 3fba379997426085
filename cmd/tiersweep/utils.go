package main

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// parseWindow builds the inclusive last-modified window. An empty start
// means "no lower bound"; an empty end means now.
func parseWindow(newerThan, olderThan string) (time.Time, time.Time, error) {
	var start time.Time
	end := time.Now().UTC()

	if strings.TrimSpace(newerThan) != "" {
		t, err := parseTimeBound(newerThan, false)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --newer-than: %w", err)
		}
		start = t
	}
	if strings.TrimSpace(olderThan) != "" {
		t, err := parseTimeBound(olderThan, true)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --older-than: %w", err)
		}
		end = t
	}
	return start, end, nil
}

// parseTimeBound accepts RFC 3339 or a bare date. A bare date used as the
// end bound covers the whole day, since the window is inclusive.
func parseTimeBound(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not RFC 3339 or YYYY-MM-DD", raw)
	}
	t = t.UTC()
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
