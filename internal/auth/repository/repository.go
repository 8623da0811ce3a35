package repository

import (
	"context"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
)

// UserRepository is the credential store. Finders return nil, nil when no
// record matches.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByEmailDigest(ctx context.Context, digest string) (*authdomain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*authdomain.User, error)
	// FindByResetToken only matches tokens whose expiry is after now.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*authdomain.User, error)
	// Update applies a partial patch to a single user in one statement.
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
	// ClearExpiredResetTokens nulls reset tokens that expired before now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepository stores server-side sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *authdomain.Session) error
	FindByID(ctx context.Context, id string) (*authdomain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DeviceTokenRepository stores push notification targets.
type DeviceTokenRepository interface {
	SaveToken(ctx context.Context, userID, token, deviceInfo string) error
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
	DeleteTokens(ctx context.Context, tokens []string) error
}
