package delivery

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"questlog-backend/internal/auth/domain"
	"questlog-backend/internal/auth/usecase"
	"questlog-backend/pkg/config"
	"questlog-backend/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthProvider is the process-wide authentication capability. It is built
// once at startup and handed to every route group that needs it.
type AuthProvider struct {
	Strategy Strategy
}

// ProviderOptions carries the lifetimes each strategy needs.
type ProviderOptions struct {
	Cookies    CookieOptions
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration
}

// NewAuthProvider selects the strategy named by mode.
func NewAuthProvider(mode string, auth usecase.AuthUsecase, opts ProviderOptions) (*AuthProvider, error) {
	switch mode {
	case config.AuthModeToken:
		return &AuthProvider{Strategy: NewTokenStrategy(auth, opts.Cookies, opts.AccessTTL, opts.RefreshTTL)}, nil
	case config.AuthModeSession:
		return &AuthProvider{Strategy: NewSessionStrategy(auth, opts.Cookies, opts.SessionTTL)}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// Authenticate resolves the caller and attaches its Identity, or aborts.
func (p *AuthProvider) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := p.Strategy.Resolve(c)
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuthenticate attaches an Identity when the request carries a
// valid credential and lets anonymous requests through.
func (p *AuthProvider) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := p.Strategy.Resolve(c); err == nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided", "relogin": true})
	case errors.Is(err, token.ErrExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired", "relogin": true})
	case errors.Is(err, usecase.ErrSessionInvalid):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "relogin": true})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found", "relogin": true})
	case errors.Is(err, token.ErrInvalid):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
	default:
		log.Printf("[Auth] Failed to resolve caller: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// Authorize lets the request through only when the attached identity holds
// one of roles. It must run after Authenticate.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok && identity != nil
}
