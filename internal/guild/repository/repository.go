package repository

import (
	"context"
	"errors"

	"questlog-backend/internal/guild/domain"
)

// ErrDuplicateName is returned by Create when the guild name is taken.
var ErrDuplicateName = errors.New("guild name already taken")

// GuildRepository defines the interface for guild data access
type GuildRepository interface {
	Create(ctx context.Context, guild *domain.Guild) error
	FindByID(ctx context.Context, id string) (*domain.Guild, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Guild, int64, error)
	Delete(ctx context.Context, id string) error
}
