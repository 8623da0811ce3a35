package usecase

import (
	"context"
	"errors"
	"strings"

	"questlog-backend/internal/guild/domain"
	"questlog-backend/internal/guild/repository"
	"questlog-backend/pkg/apperror"
)

// GuildUsecase defines the interface for guild business logic
type GuildUsecase interface {
	CreateGuild(ctx context.Context, ownerID string, req CreateGuildRequest) (*domain.Guild, error)
	GetGuild(ctx context.Context, guildID string) (*domain.Guild, error)
	ListGuilds(ctx context.Context, limit, offset int) ([]*domain.Guild, int64, error)
	// DeleteGuild is restricted to Admins at the route.
	DeleteGuild(ctx context.Context, guildID string) error
}

// CreateGuildRequest represents the request body for founding a guild
type CreateGuildRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=80"`
	Description string `json:"description" binding:"max=1000"`
}

type guildUsecase struct {
	guildRepo repository.GuildRepository
}

func NewGuildUsecase(guildRepo repository.GuildRepository) GuildUsecase {
	return &guildUsecase{guildRepo: guildRepo}
}

func (u *guildUsecase) CreateGuild(ctx context.Context, ownerID string, req CreateGuildRequest) (*domain.Guild, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return nil, apperror.Validation(map[string]string{"name": "must be at least 3 characters long"})
	}
	guild := &domain.Guild{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := u.guildRepo.Create(ctx, guild); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, apperror.Conflict("Guild name already taken")
		}
		return nil, apperror.Transient("failed to create guild", err)
	}
	return guild, nil
}

func (u *guildUsecase) GetGuild(ctx context.Context, guildID string) (*domain.Guild, error) {
	guild, err := u.guildRepo.FindByID(ctx, guildID)
	if err != nil {
		return nil, apperror.Transient("failed to load guild", err)
	}
	if guild == nil {
		return nil, apperror.NotFound("Guild not found")
	}
	return guild, nil
}

func (u *guildUsecase) ListGuilds(ctx context.Context, limit, offset int) ([]*domain.Guild, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	guilds, total, err := u.guildRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.Transient("failed to list guilds", err)
	}
	return guilds, total, nil
}

func (u *guildUsecase) DeleteGuild(ctx context.Context, guildID string) error {
	if _, err := u.GetGuild(ctx, guildID); err != nil {
		return err
	}
	if err := u.guildRepo.Delete(ctx, guildID); err != nil {
		return apperror.Transient("failed to delete guild", err)
	}
	return nil
}
