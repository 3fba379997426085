// Package provider defines the narrow capabilities the pipeline needs from a
// blob-store provider: listing objects, changing their storage tier, and
// managing the authenticated session. Implementations live in subpackages;
// tests substitute fakes.
package provider

import (
	"context"
	"errors"
	"fmt"

	"tiersweep/internal/models"
)

// ErrNoSession is returned by CurrentSession when no usable credentials are
// available. The session guard treats it as "log in", not as a failure.
var ErrNoSession = errors.New("no active provider session")

// SessionInfo identifies the principal behind the current session.
type SessionInfo struct {
	Profile  string
	Account  string
	Identity string
}

// SessionClient manages the authenticated session a run operates under.
type SessionClient interface {
	// CurrentSession reports the active session, or ErrNoSession.
	CurrentSession(ctx context.Context) (*SessionInfo, error)
	// Login establishes a fresh session for the named profile. May block on
	// an interactive flow.
	Login(ctx context.Context, profile string) error
	// SetActiveScope switches the session to the given account. Callers must
	// re-query CurrentSession to verify the switch took effect.
	SetActiveScope(ctx context.Context, account string) error
}

// Lister enumerates the objects in a container. The returned slice is fully
// materialized: every page is buffered before return, because operator
// confirmation needs the complete candidate set up front. The tier argument
// is a server-side narrowing hint, not the authoritative filter.
type Lister interface {
	ListBlobs(ctx context.Context, container string, tier models.Tier) ([]models.BlobRecord, error)
}

// TierSetter issues a single-object tier change.
type TierSetter interface {
	SetTier(ctx context.Context, container, name string, req models.MigrationRequest) error
}

// RehydrationStartedError reports that a tier change could not complete
// because the object is still archived; a restore was initiated instead.
// The object stays in the failed set for this run and becomes migratable
// once the restore finishes.
type RehydrationStartedError struct {
	Name     string
	Priority models.Priority
}

func (e *RehydrationStartedError) Error() string {
	return fmt.Sprintf("rehydration of %q started with %s priority; re-run after the restore completes", e.Name, e.Priority)
}
