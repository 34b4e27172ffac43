package service

import (
	"context"
	"log"
	"time"

	"github.com/yourusername/credit-api/internal/domain/repository"
)

// PendingUserSweeper periodically deletes accounts that were registered but
// never activated within the grace window. The caller owns its lifecycle:
// construct it, call Run on a goroutine and cancel the context to stop it.
type PendingUserSweeper struct {
	userRepo repository.UserRepository
	interval time.Duration
	grace    time.Duration
}

// NewPendingUserSweeper creates a sweeper with the given cadence and grace
// window. Zero or negative values fall back to defaults.
func NewPendingUserSweeper(userRepo repository.UserRepository, interval, grace time.Duration) *PendingUserSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if grace <= 0 {
		grace = 40 * time.Minute
	}
	return &PendingUserSweeper{
		userRepo: userRepo,
		interval: interval,
		grace:    grace,
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled. Sweep failures
// are logged and the loop keeps going; the next tick retries.
func (s *PendingUserSweeper) Run(ctx context.Context) {
	log.Printf("[Sweeper] Started: interval=%s grace=%s", s.interval, s.grace)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Sweeper] Stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce deletes all PENDING accounts older than the grace window.
// Verification codes go with them through the FK cascade.
func (s *PendingUserSweeper) SweepOnce() {
	cutoff := time.Now().Add(-s.grace)
	removed, err := s.userRepo.DeletePendingBefore(cutoff)
	if err != nil {
		log.Printf("[Sweeper] Sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[Sweeper] Removed %d stale pending accounts", removed)
	}
}
