package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fieldcrypt"
)

// CompleteOAuthLogin resolves a Google identity. Lookup is by Google ID. An
// existing local account with the same email is linked only when the
// provider vouches for the address; otherwise a new account would collide
// with the email index, so the login is refused.
func (u *authUsecase) CompleteOAuthLogin(ctx context.Context, profile authdomain.ProviderProfile) (*authdomain.User, error) {
	if profile.ProviderID == "" {
		return nil, apperror.Invalid("provider returned no account id")
	}

	user, err := u.userRepo.FindByGoogleID(ctx, profile.ProviderID)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if user != nil {
		return user, nil
	}

	if strings.TrimSpace(profile.Email) == "" {
		return nil, apperror.Invalid("provider returned no email")
	}
	digest := u.cipher.Digest(profile.Email)
	existing, err := u.userRepo.FindByEmailDigest(ctx, digest)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if existing != nil {
		return u.linkGoogleAccount(ctx, existing, profile)
	}

	encryptedEmail, err := u.cipher.Encrypt(strings.TrimSpace(profile.Email))
	if err != nil {
		return nil, apperror.Transient("failed to encrypt email", err)
	}
	googleID := profile.ProviderID
	user = &authdomain.User{
		Username:    displayUsername(profile),
		Name:        strings.TrimSpace(profile.DisplayName),
		Email:       encryptedEmail,
		EmailDigest: digest,
		Provider:    authdomain.ProviderGoogle,
		Role:        authdomain.RoleUser,
		GoogleID:    &googleID,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Transient("failed to create user", err)
		}
		// A concurrent callback for the same identity won the insert.
		winner, findErr := u.userRepo.FindByGoogleID(ctx, googleID)
		if findErr != nil {
			return nil, apperror.Transient("failed to look up user", findErr)
		}
		if winner == nil {
			return nil, apperror.Conflict("User already exists")
		}
		return winner, nil
	}

	log.Printf("[Auth] Created Google account %s", user.ID)
	u.notifier.Notify(ctx, events.KindUserRegistered, user.ID, map[string]string{"provider": user.Provider})
	return user, nil
}

func (u *authUsecase) linkGoogleAccount(ctx context.Context, user *authdomain.User, profile authdomain.ProviderProfile) (*authdomain.User, error) {
	if !profile.EmailVerified {
		return nil, apperror.Conflict("An account with this email already exists")
	}
	if user.GoogleID != nil && *user.GoogleID != profile.ProviderID {
		return nil, apperror.Conflict("An account with this email is linked to another Google account")
	}

	googleID := profile.ProviderID
	if err := u.userRepo.Update(ctx, user.ID, map[string]interface{}{"google_id": googleID}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Google account already linked")
		}
		return nil, apperror.Transient("failed to link account", err)
	}
	user.GoogleID = &googleID

	log.Printf("[Auth] Linked Google account to user %s", user.ID)
	u.notifier.Notify(ctx, events.KindOAuthAccountLink, user.ID, map[string]string{"provider": authdomain.ProviderGoogle})
	return user, nil
}

func displayUsername(profile authdomain.ProviderProfile) string {
	if name := strings.TrimSpace(profile.DisplayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(fieldcrypt.Normalize(profile.Email), "@")
	return local
}
