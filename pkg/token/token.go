package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Namespace separates access tokens from refresh tokens. Each namespace has
// its own secret and audience, so one kind can never stand in for the other.
type Namespace string

const (
	Access  Namespace = "access"
	Refresh Namespace = "refresh"
)

var (
	// ErrExpired means the token was well formed and correctly signed but its
	// expiry has passed. Callers may fall back to the refresh flow.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers every other failure: bad signature, wrong namespace,
	// malformed claims. It is terminal.
	ErrInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used to stamp and validate tokens.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccess(userID, role string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{string(Access)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return i.sign(claims, i.accessSecret)
}

// IssueRefresh signs a refresh token. Every token carries a unique ID so two
// tokens issued within the same second still differ.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{string(Refresh)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}
	return i.sign(claims, i.refreshSecret)
}

func (i *Issuer) sign(claims Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, audience and expiry of a token in the given
// namespace. It returns ErrExpired or ErrInvalid on failure.
func (i *Issuer) Verify(tokenString string, ns Namespace) (*Claims, error) {
	var secret []byte
	switch ns {
	case Access:
		secret = i.accessSecret
	case Refresh:
		secret = i.refreshSecret
	default:
		return nil, ErrInvalid
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(ns)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		// An expired token with a bad signature is still just invalid; the
		// parser only reports expiry once the signature checks out.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if claims.UserID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
