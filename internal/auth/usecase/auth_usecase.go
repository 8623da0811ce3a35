package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strings"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fieldcrypt"
	"questlog-backend/pkg/mailer"
	"questlog-backend/pkg/password"
	"questlog-backend/pkg/token"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      *password.Hasher
	cipher      *fieldcrypt.Cipher
	tokens      *token.Issuer
	mail        mailer.Sender
	notifier    Notifier
	opts        Options
	now         func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *password.Hasher,
	cipher *fieldcrypt.Cipher,
	tokens *token.Issuer,
	mail mailer.Sender,
	notifier Notifier,
	opts Options,
) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		cipher:      cipher,
		tokens:      tokens,
		mail:        mail,
		notifier:    notifier,
		opts:        opts,
		now:         time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperror.Validation(map[string]string{"username": "Username is required"})
	}

	digest := u.cipher.Digest(req.Email)
	existing, err := u.userRepo.FindByEmailDigest(ctx, digest)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("User already exists")
	}

	hashed, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Transient("failed to hash password", err)
	}
	// Only the digest is normalized; the address is kept as entered.
	encryptedEmail, err := u.cipher.Encrypt(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, apperror.Transient("failed to encrypt email", err)
	}

	user := &authdomain.User{
		Username:     username,
		Email:        encryptedEmail,
		EmailDigest:  digest,
		PasswordHash: &hashed,
		Provider:     authdomain.ProviderLocal,
		Role:         authdomain.RoleUser,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Transient("failed to create user", err)
	}

	log.Printf("[Auth] Registered user %s", user.ID)
	u.notifier.Notify(ctx, events.KindUserRegistered, user.ID, map[string]string{"provider": user.Provider})
	return user, nil
}

// Login keeps distinct answers for an unknown email (404) and a wrong
// password (401).
func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdomain.User, error) {
	user, err := u.userRepo.FindByEmailDigest(ctx, u.cipher.Digest(req.Email))
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	if !user.HasPassword() {
		return nil, apperror.Unauthenticated("Please use Google Sign-In for this account")
	}

	ok, err := u.hasher.Verify(*user.PasswordHash, req.Password)
	if err != nil {
		log.Printf("[Auth] Stored password hash for user %s is unreadable: %v", user.ID, err)
	}
	if !ok {
		return nil, apperror.Unauthenticated("Invalid password")
	}
	return user, nil
}

func (u *authUsecase) IssueTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenPair, error) {
	access, err := u.tokens.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Transient("failed to issue access token", err)
	}
	refresh, err := u.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperror.Transient("failed to issue refresh token", err)
	}
	if err := u.userRepo.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, apperror.Transient("failed to store refresh token", err)
	}
	return &authdto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*authdto.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthenticated("No refresh token provided")
	}
	claims, err := u.tokens.Verify(refreshToken, token.Refresh)
	if err != nil {
		return nil, apperror.Forbidden("Expired or invalid refresh token")
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.Forbidden("Invalid refresh token")
	}
	if user.RefreshToken == nil || !sameToken(*user.RefreshToken, refreshToken) {
		if u.opts.RefreshRotation && user.RefreshToken != nil {
			u.handleReuse(ctx, user)
		}
		return nil, apperror.Forbidden("Invalid refresh token")
	}

	access, err := u.tokens.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Transient("failed to issue access token", err)
	}
	pair := &authdto.TokenPair{AccessToken: access}
	if !u.opts.RefreshRotation {
		return pair, nil
	}

	next, err := u.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperror.Transient("failed to issue refresh token", err)
	}
	if err := u.userRepo.SetRefreshToken(ctx, user.ID, &next); err != nil {
		return nil, apperror.Transient("failed to store refresh token", err)
	}
	pair.RefreshToken = next
	return pair, nil
}

// handleReuse revokes the user's live refresh token after a superseded one
// was presented. Whoever holds the stale token may have stolen it.
func (u *authUsecase) handleReuse(ctx context.Context, user *authdomain.User) {
	log.Printf("[Auth] Superseded refresh token presented for user %s, revoking", user.ID)
	if err := u.userRepo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		log.Printf("[Auth] Failed to revoke refresh token for user %s: %v", user.ID, err)
	}
	u.notifier.Notify(ctx, events.KindRefreshTokenReuse, user.ID, nil)
}

func (u *authUsecase) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := u.tokens.Verify(refreshToken, token.Refresh)
	if err != nil {
		return nil
	}
	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return apperror.Transient("failed to look up user", err)
	}
	if user == nil || user.RefreshToken == nil || !sameToken(*user.RefreshToken, refreshToken) {
		return nil
	}
	if err := u.userRepo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return apperror.Transient("failed to revoke refresh token", err)
	}
	return nil
}

func (u *authUsecase) ValidateAccessToken(ctx context.Context, accessToken string) (*authdomain.User, error) {
	claims, err := u.tokens.Verify(accessToken, token.Access)
	if err != nil {
		return nil, err
	}
	// Re-read the user so role changes and removals apply before expiry.
	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Transient("failed to look up user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) Describe(user *authdomain.User) *authdto.UserResponse {
	return &authdto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Email:     u.cipher.DecryptString(user.Email),
		Bio:       u.cipher.DecryptString(user.Bio),
		Role:      user.Role,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
	}
}

func sameToken(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
