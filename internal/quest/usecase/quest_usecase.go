package usecase

import (
	"context"
	"strings"

	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/internal/quest/domain"
	"questlog-backend/internal/quest/repository"
	"questlog-backend/pkg/apperror"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// questUsecase implements QuestUsecase interface
type questUsecase struct {
	questRepo repository.QuestRepository
}

// NewQuestUsecase creates a new instance of questUsecase
func NewQuestUsecase(questRepo repository.QuestRepository) QuestUsecase {
	return &questUsecase{
		questRepo: questRepo,
	}
}

func (u *questUsecase) CreateQuest(ctx context.Context, actor Actor, req CreateQuestRequest) (*domain.Quest, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation(map[string]string{"title": "is required"})
	}
	quest := &domain.Quest{
		OwnerID:     actor.UserID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		XP:          req.XP,
	}
	if err := u.questRepo.Create(ctx, quest); err != nil {
		return nil, apperror.Transient("failed to create quest", err)
	}
	return quest, nil
}

func (u *questUsecase) GetQuest(ctx context.Context, questID string) (*domain.Quest, error) {
	quest, err := u.questRepo.FindByID(ctx, questID)
	if err != nil {
		return nil, apperror.Transient("failed to load quest", err)
	}
	if quest == nil {
		return nil, apperror.NotFound("Quest not found")
	}
	return quest, nil
}

func (u *questUsecase) ListQuests(ctx context.Context, filter domain.QuestFilter) ([]*domain.Quest, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	quests, total, err := u.questRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Transient("failed to list quests", err)
	}
	return quests, total, nil
}

func (u *questUsecase) UpdateQuest(ctx context.Context, actor Actor, questID string, updates QuestUpdateRequest) (*domain.Quest, error) {
	quest, err := u.owned(ctx, actor, questID)
	if err != nil {
		return nil, err
	}

	if updates.Title != nil {
		title := strings.TrimSpace(*updates.Title)
		if title == "" {
			return nil, apperror.Validation(map[string]string{"title": "is required"})
		}
		quest.Title = title
	}
	if updates.Description != nil {
		quest.Description = strings.TrimSpace(*updates.Description)
	}
	if updates.XP != nil {
		quest.XP = *updates.XP
	}
	if updates.Completed != nil {
		quest.Completed = *updates.Completed
	}

	if err := u.questRepo.Update(ctx, quest); err != nil {
		return nil, apperror.Transient("failed to update quest", err)
	}
	return quest, nil
}

func (u *questUsecase) DeleteQuest(ctx context.Context, actor Actor, questID string) error {
	quest, err := u.owned(ctx, actor, questID)
	if err != nil {
		return err
	}
	if err := u.questRepo.Delete(ctx, quest.ID); err != nil {
		return apperror.Transient("failed to delete quest", err)
	}
	return nil
}

// owned loads a quest the actor may modify.
func (u *questUsecase) owned(ctx context.Context, actor Actor, questID string) (*domain.Quest, error) {
	quest, err := u.GetQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if quest.OwnerID != actor.UserID && actor.Role != authdomain.RoleAdmin && actor.Role != authdomain.RoleModerator {
		return nil, apperror.Forbidden("Access denied")
	}
	return quest, nil
}
