package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/lock"
	"github.com/docedelicia/storefront/internal/repository"
)

// janitorLockKey serializes sweeps across instances sharing a store.
const janitorLockKey = "janitor:sessions"

// JanitorConfig holds session janitor settings.
type JanitorConfig struct {
	// Interval is how often expired sessions are swept.
	Interval time.Duration

	// LockTTL bounds how long the sweep lock may be held.
	LockTTL time.Duration
}

// SessionJanitor periodically deletes expired sessions from the durable
// store. Expired sessions are already rejected at resolution time; the
// janitor only keeps the table from growing without bound.
type SessionJanitor struct {
	sessionRepo repository.SessionRepository
	locker      lock.Locker
	cfg         JanitorConfig
	logger      zerolog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSessionJanitor creates a new SessionJanitor.
func NewSessionJanitor(
	sessionRepo repository.SessionRepository,
	locker lock.Locker,
	cfg JanitorConfig,
	logger zerolog.Logger,
) *SessionJanitor {
	return &SessionJanitor{
		sessionRepo: sessionRepo,
		locker:      locker,
		cfg:         cfg,
		logger:      logger.With().Str("service", "session_janitor").Logger(),
		stopCh:      make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (j *SessionJanitor) Start(ctx context.Context) {
	j.wg.Add(1)
	go j.run(ctx)
	j.logger.Info().Dur("interval", j.cfg.Interval).Msg("session janitor started")
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (j *SessionJanitor) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info().Msg("session janitor stopped")
}

func (j *SessionJanitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-j.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep deletes expired sessions once, skipping the round when another
// instance holds the sweep lock.
func (j *SessionJanitor) sweep(ctx context.Context) {
	acquired, err := j.locker.Acquire(ctx, janitorLockKey, j.cfg.LockTTL)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to acquire janitor lock")
		return
	}
	if !acquired {
		j.logger.Debug().Msg("janitor lock held elsewhere, skipping sweep")
		return
	}
	defer func() {
		if _, err := j.locker.Release(ctx, janitorLockKey); err != nil {
			j.logger.Warn().Err(err).Msg("failed to release janitor lock")
		}
	}()

	deleted, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to delete expired sessions")
		return
	}
	if deleted > 0 {
		j.logger.Info().Int64("deleted", deleted).Msg("expired sessions swept")
	}
}
