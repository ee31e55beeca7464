package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
)

// HousekeepingService periodically purges expired single-use tokens.
// Expired rows are already unredeemable, so this is hygiene, not
// correctness.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the background sweep loop. One sweep runs immediately.
func (s *HousekeepingService) Start() {
	if s.Interval <= 0 {
		s.Interval = time.Hour
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight sweep.
func (s *HousekeepingService) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Store.Tokens().DeleteExpiredTokens(ctx, time.Now().UTC()); err != nil {
		s.Logger.Error("failed to purge expired tokens", "err", err)
		return
	}
	s.Logger.Debug("expired tokens purged")
}
