package delivery

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"questlog-backend/internal/auth/domain"
	"questlog-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "token"
	RefreshCookie = "refreshToken"
	SessionCookie = "sid"

	identityKey = "identity"
)

// ErrNoCredentials means the request carried no token or session cookie.
var ErrNoCredentials = errors.New("no credentials provided")

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   domain.Role
	User   *domain.User
}

// Strategy authenticates requests and manages the credentials that prove a
// login. Exactly one strategy is active per process.
type Strategy interface {
	Name() string
	// Resolve authenticates the request. It never authorizes.
	Resolve(c *gin.Context) (*Identity, error)
	// Establish signs the user in on the response.
	Establish(c *gin.Context, user *domain.User) error
	// Terminate signs the caller out and clears its cookies.
	Terminate(c *gin.Context) error
}

// CookieOptions control the attributes of auth cookies.
type CookieOptions struct {
	Secure bool
}

func setCookie(c *gin.Context, opts CookieOptions, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", opts.Secure, true)
}

func clearCookie(c *gin.Context, opts CookieOptions, name string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", opts.Secure, true)
}

// TokenStrategy keeps the login in a short-lived access token cookie and a
// long-lived refresh token cookie.
type TokenStrategy struct {
	auth       usecase.AuthUsecase
	cookies    CookieOptions
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenStrategy(auth usecase.AuthUsecase, cookies CookieOptions, accessTTL, refreshTTL time.Duration) *TokenStrategy {
	return &TokenStrategy{auth: auth, cookies: cookies, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenStrategy) Name() string { return "token" }

func (s *TokenStrategy) Resolve(c *gin.Context) (*Identity, error) {
	tok, _ := c.Cookie(AccessCookie)
	if tok == "" {
		tok = bearerToken(c.GetHeader("Authorization"))
	}
	if tok == "" {
		return nil, ErrNoCredentials
	}
	user, err := s.auth.ValidateAccessToken(c.Request.Context(), tok)
	if err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

func (s *TokenStrategy) Establish(c *gin.Context, user *domain.User) error {
	pair, err := s.auth.IssueTokens(c.Request.Context(), user)
	if err != nil {
		return err
	}
	setCookie(c, s.cookies, AccessCookie, pair.AccessToken, s.accessTTL)
	setCookie(c, s.cookies, RefreshCookie, pair.RefreshToken, s.refreshTTL)
	return nil
}

func (s *TokenStrategy) Terminate(c *gin.Context) error {
	refresh, _ := c.Cookie(RefreshCookie)
	err := s.auth.RevokeRefreshToken(c.Request.Context(), refresh)
	clearCookie(c, s.cookies, AccessCookie)
	clearCookie(c, s.cookies, RefreshCookie)
	return err
}

// Refresh exchanges the refresh cookie for a new access cookie, rotating the
// refresh cookie when the usecase hands back a new one.
func (s *TokenStrategy) Refresh(c *gin.Context) error {
	refresh, _ := c.Cookie(RefreshCookie)
	pair, err := s.auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		return err
	}
	setCookie(c, s.cookies, AccessCookie, pair.AccessToken, s.accessTTL)
	if pair.RefreshToken != "" {
		setCookie(c, s.cookies, RefreshCookie, pair.RefreshToken, s.refreshTTL)
	}
	return nil
}

// SessionStrategy keeps the login in a server-side session referenced by
// the sid cookie.
type SessionStrategy struct {
	auth    usecase.AuthUsecase
	cookies CookieOptions
	ttl     time.Duration
}

func NewSessionStrategy(auth usecase.AuthUsecase, cookies CookieOptions, ttl time.Duration) *SessionStrategy {
	return &SessionStrategy{auth: auth, cookies: cookies, ttl: ttl}
}

func (s *SessionStrategy) Name() string { return "session" }

func (s *SessionStrategy) Resolve(c *gin.Context) (*Identity, error) {
	sid, _ := c.Cookie(SessionCookie)
	if sid == "" {
		return nil, ErrNoCredentials
	}
	user, err := s.auth.ResolveSession(c.Request.Context(), sid)
	if err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

func (s *SessionStrategy) Establish(c *gin.Context, user *domain.User) error {
	// Drop any session the client already holds so a login always starts fresh.
	if old, _ := c.Cookie(SessionCookie); old != "" {
		_ = s.auth.DeleteSession(c.Request.Context(), old)
	}
	session, err := s.auth.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}
	setCookie(c, s.cookies, SessionCookie, session.ID, s.ttl)
	return nil
}

func (s *SessionStrategy) Terminate(c *gin.Context) error {
	sid, _ := c.Cookie(SessionCookie)
	err := s.auth.DeleteSession(c.Request.Context(), sid)
	clearCookie(c, s.cookies, SessionCookie)
	return err
}

func identityOf(user *domain.User) *Identity {
	return &Identity{UserID: user.ID, Role: user.Role, User: user}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
