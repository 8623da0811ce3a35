package repository

import (
	"context"
	"errors"
	"time"

	"questlog-backend/internal/guild/domain"
	"questlog-backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormGuildRepository struct {
	db *gorm.DB
}

func NewGormGuildRepository(db *gorm.DB) GuildRepository {
	return &gormGuildRepository{db: db}
}

func (r *gormGuildRepository) Create(ctx context.Context, guild *domain.Guild) error {
	if guild.ID == "" {
		guild.ID = uuid.New().String()
	}
	now := time.Now()
	guild.CreatedAt = now
	guild.UpdatedAt = now
	err := r.db.WithContext(ctx).Create(guild).Error
	if database.IsDuplicate(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *gormGuildRepository) FindByID(ctx context.Context, id string) (*domain.Guild, error) {
	var guild domain.Guild
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&guild).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &guild, nil
}

func (r *gormGuildRepository) List(ctx context.Context, limit, offset int) ([]*domain.Guild, int64, error) {
	var guilds []*domain.Guild
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Guild{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&guilds).Error
	return guilds, total, err
}

func (r *gormGuildRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Guild{}, "id = ?", id).Error
}
