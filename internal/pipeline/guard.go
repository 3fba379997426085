package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"tiersweep/internal/models"
	"tiersweep/internal/provider"
)

// EnsureSession makes sure an authenticated session scoped to the run's
// account exists before anything is read. Idempotent: a session that is
// already correctly scoped is left untouched. A scope that cannot be
// verified after switching is a *ScopeError and aborts the whole run.
func EnsureSession(ctx context.Context, sc provider.SessionClient, rc models.RunContext, log *slog.Logger) error {
	info, err := sc.CurrentSession(ctx)
	if err != nil && !errors.Is(err, provider.ErrNoSession) {
		return &ScopeError{Want: rc.Account, Err: err}
	}

	wrongProfile := info != nil && rc.Profile != "" && info.Profile != rc.Profile
	if info == nil || wrongProfile {
		log.Info("establishing provider session", "profile", rc.Profile)
		if err := sc.Login(ctx, rc.Profile); err != nil {
			return &ScopeError{Want: rc.Account, Err: err}
		}
		if info, err = sc.CurrentSession(ctx); err != nil {
			return &ScopeError{Want: rc.Account, Err: err}
		}
	}

	if info.Account == rc.Account {
		log.Debug("session already scoped", "account", info.Account, "identity", info.Identity)
		return nil
	}

	log.Info("switching account scope", "from", info.Account, "to", rc.Account)
	if err := sc.SetActiveScope(ctx, rc.Account); err != nil {
		return &ScopeError{Want: rc.Account, Err: err}
	}

	// Re-query to verify the switch actually took effect.
	info, err = sc.CurrentSession(ctx)
	if err != nil {
		return &ScopeError{Want: rc.Account, Err: err}
	}
	if info.Account != rc.Account {
		return &ScopeError{Want: rc.Account, Got: info.Account}
	}
	return nil
}
