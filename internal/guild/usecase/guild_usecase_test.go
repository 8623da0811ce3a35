package usecase

import (
	"context"
	"testing"

	"questlog-backend/internal/guild/domain"
	"questlog-backend/internal/guild/repository"
	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/database/dbtest"
)

func TestGuilds(t *testing.T) {
	db := dbtest.Open(t, &domain.Guild{})
	uc := NewGuildUsecase(repository.NewGormGuildRepository(db))
	ctx := context.Background()

	g, err := uc.CreateGuild(ctx, "u-1", CreateGuildRequest{Name: " Silver Hand ", Description: "Paladins"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Name != "Silver Hand" || g.OwnerID != "u-1" {
		t.Fatalf("guild = %+v", g)
	}

	_, err = uc.CreateGuild(ctx, "u-2", CreateGuildRequest{Name: "Silver Hand"})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("duplicate err = %v", err)
	}
	_, err = uc.CreateGuild(ctx, "u-2", CreateGuildRequest{Name: "  ab  "})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("short name err = %v", err)
	}

	if _, err := uc.CreateGuild(ctx, "u-2", CreateGuildRequest{Name: "Argent Dawn"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	guilds, total, err := uc.ListGuilds(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || guilds[0].Name != "Argent Dawn" {
		t.Fatalf("list = %d, first %q", total, guilds[0].Name)
	}

	if err := uc.DeleteGuild(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := uc.DeleteGuild(ctx, g.ID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
