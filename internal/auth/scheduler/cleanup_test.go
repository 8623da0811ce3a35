package scheduler

import (
	"context"
	"testing"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/database/dbtest"
)

func TestRunOnce(t *testing.T) {
	db := dbtest.Open(t, &authdomain.User{}, &authdomain.Session{})
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	user := &authdomain.User{Username: "hero", Email: "x", EmailDigest: "d1"}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := sessions.Create(ctx, &authdomain.Session{ID: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.Create(ctx, &authdomain.Session{ID: "dead", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := users.Update(ctx, user.ID, map[string]interface{}{
		"reset_password_token":   "stale",
		"reset_password_expires": now.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("set reset token: %v", err)
	}

	s := NewCleanupScheduler(users, sessions, time.Minute)
	s.now = func() time.Time { return now }
	s.RunOnce(ctx)

	if got, err := sessions.FindByID(ctx, "dead"); err != nil || got != nil {
		t.Fatalf("expired session = %v, %v", got, err)
	}
	if got, err := sessions.FindByID(ctx, "live"); err != nil || got == nil {
		t.Fatalf("live session = %v, %v", got, err)
	}
	reloaded, err := users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if reloaded.ResetPasswordToken != nil || reloaded.ResetPasswordExpires != nil {
		t.Fatalf("reset token not cleared: %v", reloaded.ResetPasswordToken)
	}
}

func TestStartStop(t *testing.T) {
	db := dbtest.Open(t, &authdomain.User{}, &authdomain.Session{})
	s := NewCleanupScheduler(repository.NewUserRepository(db), repository.NewSessionRepository(db), time.Hour)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestNonPositiveIntervalFallsBack(t *testing.T) {
	db := dbtest.Open(t, &authdomain.User{}, &authdomain.Session{})
	for _, interval := range []time.Duration{0, -time.Second} {
		s := NewCleanupScheduler(repository.NewUserRepository(db), repository.NewSessionRepository(db), interval)
		if s.interval != DefaultInterval {
			t.Fatalf("interval for %s = %s, want %s", interval, s.interval, DefaultInterval)
		}
		s.Start()
		s.Stop()
	}
}
