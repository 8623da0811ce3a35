package usecase

import (
	"context"

	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/internal/quest/domain"
)

// Actor is the caller a write is performed for.
type Actor struct {
	UserID string
	Role   authdomain.Role
}

// QuestUsecase defines the interface for quest business logic
type QuestUsecase interface {
	// CreateQuest creates a quest owned by the actor
	CreateQuest(ctx context.Context, actor Actor, req CreateQuestRequest) (*domain.Quest, error)

	// GetQuest retrieves a quest by ID
	GetQuest(ctx context.Context, questID string) (*domain.Quest, error)

	// ListQuests retrieves one page of quests
	ListQuests(ctx context.Context, filter domain.QuestFilter) ([]*domain.Quest, int64, error)

	// UpdateQuest updates a quest. Only the owner, an Admin or a Moderator may.
	UpdateQuest(ctx context.Context, actor Actor, questID string, updates QuestUpdateRequest) (*domain.Quest, error)

	// DeleteQuest deletes a quest. Only the owner, an Admin or a Moderator may.
	DeleteQuest(ctx context.Context, actor Actor, questID string) error
}

// CreateQuestRequest represents the request body for creating a quest
type CreateQuestRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
	XP          int    `json:"xp" binding:"min=0,max=10000"`
}

// QuestUpdateRequest represents the fields that can be updated
type QuestUpdateRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	XP          *int    `json:"xp,omitempty" binding:"omitempty,min=0,max=10000"`
	Completed   *bool   `json:"completed,omitempty"`
}
