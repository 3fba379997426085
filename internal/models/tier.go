package models

import (
	"fmt"
	"strings"
)

// Tier is a storage class trading access latency against storage cost.
type Tier string

const (
	TierHot     Tier = "hot"
	TierCool    Tier = "cool"
	TierCold    Tier = "cold"
	TierArchive Tier = "archive"
	TierUnknown Tier = "unknown"
)

// ParseTier maps user or provider input to a Tier. Unrecognized values map
// to TierUnknown rather than erroring; callers that need a concrete tier
// check Valid.
func ParseTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hot":
		return TierHot
	case "cool":
		return TierCool
	case "cold":
		return TierCold
	case "archive":
		return TierArchive
	default:
		return TierUnknown
	}
}

// Valid reports whether t names a concrete storage tier.
func (t Tier) Valid() bool {
	switch t {
	case TierHot, TierCool, TierCold, TierArchive:
		return true
	}
	return false
}

// RehydrationStatus tracks whether an archived object is being restored to
// an accessible tier.
type RehydrationStatus string

const (
	RehydrationNone     RehydrationStatus = "none"
	RehydrationPending  RehydrationStatus = "pending"
	RehydrationComplete RehydrationStatus = "complete"
)

// Priority is the requested urgency of a rehydration. It only matters when
// an object is leaving the archive tier.
type Priority string

const (
	PriorityStandard Priority = "standard"
	PriorityHigh     Priority = "high"
)

// ParsePriority parses a rehydration priority. Empty input selects the
// standard priority.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "standard":
		return PriorityStandard, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority %q (want standard or high)", raw)
	}
}
