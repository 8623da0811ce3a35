package usecase

import (
	"context"
	"errors"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/pkg/events"
)

var (
	// ErrUserNotFound means a credential verified but its user is gone.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionInvalid means the session id is unknown or expired.
	ErrSessionInvalid = errors.New("session invalid or expired")
)

// AuthUsecase defines the authentication and account operations
type AuthUsecase interface {
	// Register creates a local account. It does not sign the user in.
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error)

	// Login verifies local credentials.
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdomain.User, error)

	// IssueTokens signs a new access and refresh token pair and stores the
	// refresh token on the user, superseding any previous one.
	IssueTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenPair, error)

	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*authdto.TokenPair, error)

	// RevokeRefreshToken clears the stored refresh token if it matches.
	RevokeRefreshToken(ctx context.Context, refreshToken string) error

	// ValidateAccessToken resolves the user of an access token. Errors are
	// token.ErrExpired, token.ErrInvalid, ErrUserNotFound or transient.
	ValidateAccessToken(ctx context.Context, accessToken string) (*authdomain.User, error)

	// CreateSession opens a server-side session for the user.
	CreateSession(ctx context.Context, userID string) (*authdomain.Session, error)

	// ResolveSession returns the user of a live session. Errors are
	// ErrSessionInvalid, ErrUserNotFound or transient.
	ResolveSession(ctx context.Context, sessionID string) (*authdomain.User, error)

	// DeleteSession ends a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// ForgotPassword stores a reset token and mails the link built on baseURL.
	ForgotPassword(ctx context.Context, email, baseURL string) error

	// ValidateResetToken reports whether a reset token is live.
	ValidateResetToken(ctx context.Context, resetToken string) error

	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error

	// CompleteOAuthLogin maps a provider identity onto a local user,
	// creating one on first login.
	CompleteOAuthLogin(ctx context.Context, profile authdomain.ProviderProfile) (*authdomain.User, error)

	// Describe renders a user with decrypted fields.
	Describe(user *authdomain.User) *authdto.UserResponse
}

// Notifier receives security events.
type Notifier interface {
	Notify(ctx context.Context, kind events.Kind, userID string, attrs map[string]string)
}

// Options tune token and credential lifetimes.
type Options struct {
	RefreshRotation bool
	SessionTTL      time.Duration
	ResetTokenTTL   time.Duration
	MailFrom        string
}
