package usecase

import (
	"context"
	"strings"
	"testing"

	authdomain "questlog-backend/internal/auth/domain"
	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/database/dbtest"
	"questlog-backend/pkg/fieldcrypt"
)

type cipherDescriber struct{ cipher *fieldcrypt.Cipher }

func (d cipherDescriber) Describe(u *authdomain.User) *authdto.UserResponse {
	return &authdto.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: d.cipher.DecryptString(u.Email),
		Bio:   d.cipher.DecryptString(u.Bio),
	}
}

type fixture struct {
	uc     ProfileUsecase
	users  repository.UserRepository
	cipher *fieldcrypt.Cipher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &authdomain.User{})
	cipher, err := fieldcrypt.New("profile-test-key")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	users := repository.NewUserRepository(db)
	return &fixture{uc: NewProfileUsecase(users, cipher, cipherDescriber{cipher}), users: users, cipher: cipher}
}

func (f *fixture) addUser(t *testing.T, email string) *authdomain.User {
	t.Helper()
	enc, err := f.cipher.Encrypt(email)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	user := &authdomain.User{Username: "hero", Email: enc, EmailDigest: f.cipher.Digest(email)}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create: %v", err)
	}
	return user
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.addUser(t, "hero@example.com")

	got, err := f.uc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Name:  "  Mary-Jane Watson ",
		Email: " New@Example.COM",
		Bio:   "I <b>love</b> quests",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Mary-Jane Watson" || got.Email != "new@example.com" || got.Bio != "I blove/b quests" {
		t.Fatalf("profile = %+v", got)
	}

	stored, err := f.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if strings.Contains(stored.Email, "example") || strings.Contains(stored.Bio, "quests") {
		t.Fatalf("fields stored in plaintext: %q %q", stored.Email, stored.Bio)
	}
	if stored.EmailDigest != f.cipher.Digest("new@example.com") {
		t.Fatal("email digest not updated")
	}

	profile, err := f.uc.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Bio != "I blove/b quests" {
		t.Fatalf("bio = %q", profile.Bio)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "hero@example.com")
	f.addUser(t, "taken@example.com")

	valid := UpdateProfileRequest{Name: "Hero", Email: "hero@example.com", Bio: "ok"}
	tests := []struct {
		name  string
		mod   func(r *UpdateProfileRequest)
		field string
	}{
		{"short name", func(r *UpdateProfileRequest) { r.Name = " Al " }, "name"},
		{"long name", func(r *UpdateProfileRequest) { r.Name = strings.Repeat("a", 51) }, "name"},
		{"digits in name", func(r *UpdateProfileRequest) { r.Name = "Hero99" }, "name"},
		{"bad email", func(r *UpdateProfileRequest) { r.Email = "not-an-email" }, "email"},
		{"taken email", func(r *UpdateProfileRequest) { r.Email = "TAKEN@example.com" }, "email"},
		{"long bio", func(r *UpdateProfileRequest) { r.Bio = strings.Repeat("b", 501) }, "bio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mod(&req)
			_, err := f.uc.UpdateProfile(context.Background(), user.ID, req)
			appErr := apperror.As(err)
			if appErr.Kind != apperror.KindValidation || appErr.Fields[tt.field] == "" {
				t.Fatalf("err = %v fields = %v, want %s failure", err, appErr.Fields, tt.field)
			}
		})
	}

	if _, err := f.uc.UpdateProfile(context.Background(), user.ID, valid); err != nil {
		t.Fatalf("valid update: %v", err)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.GetProfile(context.Background(), "missing"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("err = %v", err)
	}
}
