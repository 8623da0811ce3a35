package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"questlog-backend/internal/auth/repository"
)

// CleanupScheduler purges expired sessions and stale password reset tokens
type CleanupScheduler struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	interval    time.Duration
	now         func() time.Time
	stopChan    chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	started     atomic.Bool
}

// DefaultInterval is used when a non-positive interval is configured.
const DefaultInterval = 10 * time.Minute

// NewCleanupScheduler creates a new scheduler
func NewCleanupScheduler(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	interval time.Duration,
) *CleanupScheduler {
	if interval <= 0 {
		log.Printf("[Scheduler] Invalid cleanup interval %s, using %s", interval, DefaultInterval)
		interval = DefaultInterval
	}
	return &CleanupScheduler{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		interval:    interval,
		now:         time.Now,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *CleanupScheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[Scheduler] Starting cleanup scheduler (interval: %s)", s.interval)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.RunOnce(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stopChan:
				log.Println("[Scheduler] Cleanup scheduler stopped")
				return
			}
		}
	}()
}

// Stop stops the loop and waits for an in-flight sweep to finish. It is
// safe to call more than once.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if s.started.Load() {
		<-s.done
	}
}

// RunOnce performs a single sweep
func (s *CleanupScheduler) RunOnce(ctx context.Context) {
	now := s.now()

	sessions, err := s.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Error deleting expired sessions: %v", err)
	} else if sessions > 0 {
		log.Printf("[Scheduler] Deleted %d expired sessions", sessions)
	}

	resets, err := s.userRepo.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Error clearing expired reset tokens: %v", err)
	} else if resets > 0 {
		log.Printf("[Scheduler] Cleared %d expired reset tokens", resets)
	}
}
