// Package csrf implements double-submit cookie protection for gin.
//
// A random token is stored in an httpOnly cookie and handed to the client
// through Issue. Unsafe requests must echo it in the X-CSRF-Token header or
// the _csrf form field.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "_csrf"
	HeaderName = "X-CSRF-Token"
	FormField  = "_csrf"

	contextKey = "csrfToken"
)

type Guard struct {
	exempt []string
	secure bool
}

// New builds a guard. Requests whose path starts with one of exemptPaths
// skip the check.
func New(exemptPaths []string, secureCookie bool) *Guard {
	return &Guard{exempt: exemptPaths, secure: secureCookie}
}

// Middleware rejects unsafe requests without a matching token with 403.
// On every request it makes the current token available through Token.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(CookieName)
		if cookie != "" {
			c.Set(contextKey, cookie)
		}

		if isSafe(c.Request.Method) || g.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		presented := c.GetHeader(HeaderName)
		if presented == "" {
			presented = c.PostForm(FormField)
		}
		if cookie == "" || presented == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(presented)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
			return
		}
		c.Next()
	}
}

// Issue returns the request's token, minting and setting a new cookie when
// the client has none.
func (g *Guard) Issue(c *gin.Context) (string, error) {
	if tok := Token(c); tok != "" {
		return tok, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	tok := base64.RawURLEncoding.EncodeToString(b)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, tok, 0, "/", "", g.secure, true)
	c.Set(contextKey, tok)
	return tok, nil
}

// Handler serves GET /auth/csrf-token.
func (g *Guard) Handler(c *gin.Context) {
	tok, err := g.Issue(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue csrf token"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"csrf_token": tok})
}

// Token returns the token seen on the current request, if any.
func Token(c *gin.Context) string {
	return c.GetString(contextKey)
}

func (g *Guard) isExempt(path string) bool {
	for _, p := range g.exempt {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
