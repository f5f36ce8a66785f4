package session

import (
	"context"
	"sync/atomic"
	"time"

	"kahwadash/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverStore prefers the primary (redis) store and falls back to the
// in-memory store when it errors, retrying the primary after a minute.
type FailoverStore struct {
	primary   domain.SessionStore
	fallback  domain.SessionStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverStore(primary, fallback domain.SessionStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStore) Get(ctx context.Context, sessionID string) (string, error) {
	if !s.isDown.Load() {
		secret, err := s.primary.Get(ctx, sessionID)
		if err == nil {
			return secret, nil
		}
		s.logger.Error().Err(err).Msg("Primary session store failed, falling back to memory")
		s.isDown.Store(true)
		s.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if s.isDown.Load() && time.Since(s.lastCheck) > time.Minute {
		secret, err := s.primary.Get(ctx, sessionID)
		if err == nil {
			s.isDown.Store(false)
			return secret, nil
		}
		s.lastCheck = time.Now()
	}

	return s.fallback.Get(ctx, sessionID)
}

func (s *FailoverStore) Set(ctx context.Context, sessionID, secret string) error {
	if !s.isDown.Load() {
		err := s.primary.Set(ctx, sessionID, secret)
		if err == nil {
			// Mirror into fallback so a mid-session failover keeps the gate open.
			_ = s.fallback.Set(ctx, sessionID, secret)
			return nil
		}
		s.logger.Error().Err(err).Msg("Primary session store failed on set, falling back to memory")
		s.isDown.Store(true)
		s.lastCheck = time.Now()
	}

	return s.fallback.Set(ctx, sessionID, secret)
}

func (s *FailoverStore) Clear(ctx context.Context, sessionID string) error {
	var primaryErr error
	if !s.isDown.Load() {
		primaryErr = s.primary.Clear(ctx, sessionID)
		if primaryErr != nil {
			s.logger.Error().Err(primaryErr).Msg("Primary session store failed on clear")
			s.isDown.Store(true)
			s.lastCheck = time.Now()
		}
	}

	if err := s.fallback.Clear(ctx, sessionID); err != nil {
		return err
	}
	return primaryErr
}
