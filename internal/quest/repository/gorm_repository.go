package repository

import (
	"context"
	"errors"
	"time"

	"questlog-backend/internal/quest/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormQuestRepository implements QuestRepository using GORM
type gormQuestRepository struct {
	db *gorm.DB
}

// NewGormQuestRepository creates a new GORM-based QuestRepository
func NewGormQuestRepository(db *gorm.DB) QuestRepository {
	return &gormQuestRepository{db: db}
}

func (r *gormQuestRepository) Create(ctx context.Context, quest *domain.Quest) error {
	if quest.ID == "" {
		quest.ID = uuid.New().String()
	}
	now := time.Now()
	quest.CreatedAt = now
	quest.UpdatedAt = now
	return r.db.WithContext(ctx).Create(quest).Error
}

func (r *gormQuestRepository) FindByID(ctx context.Context, id string) (*domain.Quest, error) {
	var quest domain.Quest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quest, nil
}

func (r *gormQuestRepository) List(ctx context.Context, filter domain.QuestFilter) ([]*domain.Quest, int64, error) {
	var quests []*domain.Quest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quest{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Open quests first, newest first within each group
	err := query.Order("completed ASC, created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).Find(&quests).Error
	return quests, total, err
}

func (r *gormQuestRepository) Update(ctx context.Context, quest *domain.Quest) error {
	quest.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(quest).Error
}

func (r *gormQuestRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Quest{}, "id = ?", id).Error
}
