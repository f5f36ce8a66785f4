package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"kahwadash/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrWrongPassword is the auth-mismatch signal. It never involves a remote
// round trip; the comparison is strictly local.
var ErrWrongPassword = errors.New("invalid password")

// Gate restricts dashboard visibility behind the shared manager password.
// Two states: Locked (initial) and Unlocked. Unlocking happens when the
// secret stored for a session matches the expected password, or when a login
// submission matches it. There is no Unlocked->Locked transition, no rate
// limiting and no hashing: the gate is UX friction, not access control, and
// the remote service performs no authorization check of its own.
type Gate struct {
	expected string
	store    domain.SessionStore
	logger   zerolog.Logger
}

func NewGate(expected string, store domain.SessionStore, logger *zerolog.Logger) *Gate {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "session-gate").Logger()
	}

	return &Gate{
		expected: expected,
		store:    store,
		logger:   base,
	}
}

// Verify reports whether the submitted secret matches the configured one.
func (g *Gate) Verify(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(g.expected)) == 1
}

// IsUnlocked reports whether the session already holds the expected secret.
// A matching stored secret unlocks without a login submission.
func (g *Gate) IsUnlocked(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	stored, err := g.store.Get(ctx, sessionID)
	if err != nil {
		g.logger.Error().Err(err).Msg("read session secret")
		return false
	}
	return stored != "" && g.Verify(stored)
}

// Unlock validates the submitted secret and persists it under a new session
// id. The secret itself is never logged.
func (g *Gate) Unlock(ctx context.Context, secret string) (string, error) {
	if !g.Verify(secret) {
		return "", ErrWrongPassword
	}

	sessionID := uuid.NewString()
	if err := g.store.Set(ctx, sessionID, secret); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	g.logger.Info().Str("session_id", sessionID).Msg("manager session unlocked")
	return sessionID, nil
}
