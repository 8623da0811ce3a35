package repository

import (
	"context"
	"errors"
	"time"

	authdomain "questlog-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = authdomain.RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmailDigest(ctx context.Context, digest string) (*authdomain.User, error) {
	return r.findOne(ctx, "email_digest = ?", digest)
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*authdomain.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*authdomain.User, error) {
	return r.findOne(ctx, "reset_password_token = ? AND reset_password_expires > ?", token, now)
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	patch["updated_at"] = time.Now()
	return translate(r.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", id).UpdateColumns(patch).Error)
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return r.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"refresh_token": token,
			"updated_at":    time.Now(),
		}).Error
}

func (r *userRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&authdomain.User{}).
		Where("reset_password_token IS NOT NULL AND reset_password_expires <= ?", now).
		UpdateColumns(map[string]interface{}{
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	return res.RowsAffected, res.Error
}
