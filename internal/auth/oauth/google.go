// Package oauth runs the Google authorization code exchange and turns the
// result into a provider profile.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	authdomain "questlog-backend/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Provider is the identity provider side of the login redirect flow.
type Provider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*authdomain.ProviderProfile, error)
}

// GoogleBridge implements Provider for Google accounts.
type GoogleBridge struct {
	config      *oauth2.Config
	apiEndpoint string
}

type GoogleOption func(*GoogleBridge)

// WithEndpoints points the bridge at a different token endpoint and API
// host. Used by tests.
func WithEndpoints(tokenURL, apiEndpoint string) GoogleOption {
	return func(b *GoogleBridge) {
		b.config.Endpoint.TokenURL = tokenURL
		b.apiEndpoint = apiEndpoint
	}
}

func NewGoogleBridge(clientID, clientSecret, redirectURL string, opts ...GoogleOption) *GoogleBridge {
	b := &GoogleBridge{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				googleoauth2.UserinfoProfileScope,
				googleoauth2.UserinfoEmailScope,
			},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AuthCodeURL builds the consent redirect with a PKCE S256 challenge.
func (b *GoogleBridge) AuthCodeURL(state, verifier string) string {
	return b.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the authorization code for a token and reads the
// account's userinfo.
func (b *GoogleBridge) Exchange(ctx context.Context, code, verifier string) (*authdomain.ProviderProfile, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	tok, err := b.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(b.config.TokenSource(ctx, tok))}
	if b.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(b.apiEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get userinfo: %w", err)
	}
	if info.Id == "" {
		return nil, errors.New("userinfo has no account id")
	}

	return &authdomain.ProviderProfile{
		Provider:      authdomain.ProviderGoogle,
		ProviderID:    info.Id,
		DisplayName:   info.Name,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}

// NewState returns a random state value for the redirect round trip.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewVerifier returns a PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}
