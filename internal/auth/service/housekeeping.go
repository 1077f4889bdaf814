package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/store"
)

// DefaultHousekeepingInterval is how often expired login codes are swept.
const DefaultHousekeepingInterval = 5 * time.Minute

// HousekeepingService periodically removes expired login codes. Expiry is
// already enforced at verification time; the sweep just keeps the table
// from accumulating rows for logins that were never completed.
type HousekeepingService struct {
	Store    store.Store
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the sweep loop. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	if s.Interval <= 0 {
		s.Interval = DefaultHousekeepingInterval
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop signals the loop and waits for the in-flight sweep to finish.
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

	n, err := s.Store.LoginCodes().DeleteExpiredLoginCodes(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("housekeeping sweep failed", "err", err)
		return
	}
	if n > 0 {
		slog.Debug("swept expired login codes", "count", n)
	}
}
