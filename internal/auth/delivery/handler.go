package delivery

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/internal/auth/oauth"
	"questlog-backend/internal/auth/usecase"
	"questlog-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_verifier"
	stateTTL       = 10 * time.Minute

	loginFailurePath = "/auth/login-failure"
	loginSuccessPath = "/dashboard"
)

// refresher is implemented by strategies that support refresh tokens.
type refresher interface {
	Refresh(c *gin.Context) error
}

// AuthHandler handles the account and login HTTP requests
type AuthHandler struct {
	authUsecase   usecase.AuthUsecase
	provider      *AuthProvider
	google        oauth.Provider
	cookies       CookieOptions
	publicBaseURL string
}

// NewAuthHandler creates a new AuthHandler. google may be nil when Google
// sign-in is not configured.
func NewAuthHandler(authUsecase usecase.AuthUsecase, provider *AuthProvider, google oauth.Provider, cookies CookieOptions, publicBaseURL string) *AuthHandler {
	return &AuthHandler{
		authUsecase:   authUsecase,
		provider:      provider,
		google:        google,
		cookies:       cookies,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Register creates a local account
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created", "userId": user.ID})
}

// Login verifies credentials and signs the user in with the active strategy
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	user, err := h.authUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.provider.Strategy.Establish(c, user); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// RefreshToken issues a new access token from the refresh cookie
// POST /auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	r, ok := h.provider.Strategy.(refresher)
	if !ok {
		apperror.Respond(c, apperror.Invalid("Refresh tokens are not used in session mode"))
		return
	}
	if err := r.Refresh(c); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Access token refreshed"})
}

// Logout signs the caller out. It succeeds even without a live login.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.provider.Strategy.Terminate(c); err != nil {
		log.Printf("[Auth] Logout cleanup failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword mails a password reset link
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req authdto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	if err := h.authUsecase.ForgotPassword(c.Request.Context(), req.Email, h.baseURL(c)); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ValidateResetToken reports whether a reset link is still usable
// GET /auth/reset-password/:token
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	if err := h.authUsecase.ValidateResetToken(c.Request.Context(), c.Param("token")); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token valid"})
}

// ResetPassword sets a new password from a reset link
// POST /auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req authdto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	if err := h.authUsecase.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

// Me returns the authenticated user
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided", "relogin": true})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.authUsecase.Describe(identity.User))
}

// GoogleLogin redirects to the Google consent screen
// GET /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	state, err := oauth.NewState()
	if err != nil {
		apperror.Respond(c, apperror.Transient("failed to start google sign-in", err))
		return
	}
	verifier := oauth.NewVerifier()

	// Lax, not Strict: the callback arrives as a cross-site navigation.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/auth/google", "", h.cookies.Secure, true)
	c.SetCookie(verifierCookie, verifier, int(stateTTL.Seconds()), "/auth/google", "", h.cookies.Secure, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state, verifier))
}

// GoogleCallback completes Google sign-in
// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}
	state, _ := c.Cookie(stateCookie)
	verifier, _ := c.Cookie(verifierCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/auth/google", "", h.cookies.Secure, true)
	c.SetCookie(verifierCookie, "", -1, "/auth/google", "", h.cookies.Secure, true)

	presented := c.Query("state")
	if state == "" || presented == "" || subtle.ConstantTimeCompare([]byte(state), []byte(presented)) != 1 {
		log.Printf("[Auth] Google callback with missing or mismatched state")
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		log.Printf("[Auth] Google sign-in declined: %s", errParam)
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.google.Exchange(ctx, c.Query("code"), verifier)
	if err != nil {
		log.Printf("[Auth] Google exchange failed: %v", err)
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}
	user, err := h.authUsecase.CompleteOAuthLogin(ctx, *profile)
	if err != nil {
		log.Printf("[Auth] Google sign-in rejected: %v", err)
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}
	if err := h.provider.Strategy.Establish(c, user); err != nil {
		log.Printf("[Auth] Failed to establish login for user %s: %v", user.ID, err)
		c.Redirect(http.StatusFound, loginFailurePath)
		return
	}
	c.Redirect(http.StatusFound, loginSuccessPath)
}

// LoginFailure is where failed OAuth logins land
// GET /auth/login-failure
func (h *AuthHandler) LoginFailure(c *gin.Context) {
	c.String(http.StatusOK, "Failed to authenticate.")
}

func (h *AuthHandler) baseURL(c *gin.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	return "https://" + c.Request.Host
}
