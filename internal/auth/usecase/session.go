package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/pkg/apperror"
)

const sessionIDBytes = 32

func (u *authUsecase) CreateSession(ctx context.Context, userID string) (*authdomain.Session, error) {
	id, err := randomHex(sessionIDBytes)
	if err != nil {
		return nil, apperror.Transient("failed to generate session id", err)
	}
	session := &authdomain.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: u.now().Add(u.opts.SessionTTL),
	}
	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.Transient("failed to create session", err)
	}
	return session, nil
}

func (u *authUsecase) ResolveSession(ctx context.Context, sessionID string) (*authdomain.User, error) {
	if sessionID == "" {
		return nil, ErrSessionInvalid
	}
	session, err := u.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.Transient("failed to look up session", err)
	}
	if session == nil {
		return nil, ErrSessionInvalid
	}
	if !u.now().Before(session.ExpiresAt) {
		// Expired rows are swept by the cleanup job; drop this one eagerly.
		_ = u.sessionRepo.Delete(ctx, session.ID)
		return nil, ErrSessionInvalid
	}

	user, err := u.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessionRepo.Delete(ctx, sessionID); err != nil {
		return apperror.Transient("failed to delete session", err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
