package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	authdomain "questlog-backend/internal/auth/domain"
	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/fieldcrypt"

	"github.com/go-playground/validator/v10"
)

const (
	nameMinLen = 3
	nameMaxLen = 50
	bioMaxLen  = 500
)

var namePattern = regexp.MustCompile(`^[A-Za-z -]+$`)

// UpdateProfileRequest is the editable part of a profile
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

// Describer renders a user with decrypted fields.
type Describer interface {
	Describe(user *authdomain.User) *authdto.UserResponse
}

// ProfileUsecase defines the interface for profile business logic
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*authdto.UserResponse, error)
	// UpdateProfile validates and sanitizes the request, then stores email
	// and bio encrypted.
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*authdto.UserResponse, error)
}

type profileUsecase struct {
	userRepo  repository.UserRepository
	cipher    *fieldcrypt.Cipher
	describer Describer
	validate  *validator.Validate
}

func NewProfileUsecase(userRepo repository.UserRepository, cipher *fieldcrypt.Cipher, describer Describer) ProfileUsecase {
	return &profileUsecase{
		userRepo:  userRepo,
		cipher:    cipher,
		describer: describer,
		validate:  validator.New(),
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*authdto.UserResponse, error) {
	user, err := u.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.describer.Describe(user), nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*authdto.UserResponse, error) {
	name, email, bio, err := u.sanitize(req)
	if err != nil {
		return nil, err
	}
	user, err := u.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	digest := u.cipher.Digest(email)
	if digest != user.EmailDigest {
		other, err := u.userRepo.FindByEmailDigest(ctx, digest)
		if err != nil {
			return nil, apperror.Transient("failed to look up email", err)
		}
		if other != nil {
			return nil, apperror.Validation(map[string]string{"email": "Email already in use"})
		}
	}

	encryptedEmail, err := u.cipher.Encrypt(email)
	if err != nil {
		return nil, apperror.Transient("failed to encrypt email", err)
	}
	encryptedBio := ""
	if bio != "" {
		if encryptedBio, err = u.cipher.Encrypt(bio); err != nil {
			return nil, apperror.Transient("failed to encrypt bio", err)
		}
	}

	if err := u.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"name":         name,
		"email":        encryptedEmail,
		"email_digest": digest,
		"bio":          encryptedBio,
	}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Validation(map[string]string{"email": "Email already in use"})
		}
		return nil, apperror.Transient("Something went wrong.", err)
	}

	user.Name = name
	user.Email = encryptedEmail
	user.EmailDigest = digest
	user.Bio = encryptedBio
	return u.describer.Describe(user), nil
}

// sanitize applies the profile rules and returns the cleaned values, or a
// validation error listing every failing field.
func (u *profileUsecase) sanitize(req UpdateProfileRequest) (name, email, bio string, err error) {
	fields := map[string]string{}

	name = strings.TrimSpace(req.Name)
	switch n := utf8.RuneCountInString(name); {
	case n < nameMinLen || n > nameMaxLen:
		fields["name"] = "Name must be 3-50 characters long"
	case !namePattern.MatchString(name):
		fields["name"] = "Name must contain only letters"
	}

	email = fieldcrypt.Normalize(req.Email)
	if email == "" || u.validate.Var(email, "email") != nil {
		fields["email"] = "Enter a valid email"
	}

	bio = strings.TrimSpace(req.Bio)
	if utf8.RuneCountInString(bio) > bioMaxLen {
		fields["bio"] = "Bio must be under 500 characters"
	}
	bio = strings.NewReplacer("<", "", ">", "").Replace(bio)

	if len(fields) > 0 {
		return "", "", "", apperror.Validation(fields)
	}
	return name, email, bio, nil
}

func (u *profileUsecase) load(ctx context.Context, userID string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Transient("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}
