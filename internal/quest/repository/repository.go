package repository

import (
	"context"

	"questlog-backend/internal/quest/domain"
)

// QuestRepository defines the interface for quest data access
type QuestRepository interface {
	// Create creates a new quest
	Create(ctx context.Context, quest *domain.Quest) error

	// FindByID finds a quest by its ID, nil when absent
	FindByID(ctx context.Context, id string) (*domain.Quest, error)

	// List returns one page of quests and the total matching the filter
	List(ctx context.Context, filter domain.QuestFilter) ([]*domain.Quest, int64, error)

	// Update saves an existing quest
	Update(ctx context.Context, quest *domain.Quest) error

	// Delete deletes a quest by ID
	Delete(ctx context.Context, id string) error
}
