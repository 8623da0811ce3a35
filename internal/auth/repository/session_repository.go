package repository

import (
	"context"
	"errors"
	"time"

	authdomain "questlog-backend/internal/auth/domain"

	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *authdomain.Session) error {
	session.CreatedAt = time.Now()
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*authdomain.Session, error) {
	var session authdomain.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&authdomain.Session{}).Error
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&authdomain.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&authdomain.Session{})
	return res.RowsAffected, res.Error
}
