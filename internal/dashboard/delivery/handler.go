// Package delivery serves the role-aware landing routes.
package delivery

import (
	"net/http"

	authdelivery "questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/auth/domain"
	authusecase "questlog-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

var roleFeatures = map[domain.Role][]string{
	domain.RoleAdmin:     {"Manage Users", "Analytics"},
	domain.RoleModerator: {"Review Content"},
	domain.RoleUser:      {"Track Quests"},
}

// DashboardHandler handles the dashboard and role demo requests
type DashboardHandler struct {
	authUsecase authusecase.AuthUsecase
}

func NewDashboardHandler(authUsecase authusecase.AuthUsecase) *DashboardHandler {
	return &DashboardHandler{authUsecase: authUsecase}
}

// Admin greets Admins
// GET /protected/admin
func (h *DashboardHandler) Admin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome Admin!"})
}

// Moderator greets Moderators
// GET /protected/moderator
func (h *DashboardHandler) Moderator(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome Moderator!"})
}

// Profile greets any signed-in role by name
// GET /protected/profile
func (h *DashboardHandler) Profile(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome " + identity.User.Username,
		"user":    h.authUsecase.Describe(identity.User),
	})
}

// RoleDashboard lists the features available to the caller's role
// GET /protected/dashboard
func (h *DashboardHandler) RoleDashboard(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	role := identity.Role
	features, ok := roleFeatures[role]
	if !ok {
		role, features = domain.RoleUser, roleFeatures[domain.RoleUser]
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  string(role) + " Dashboard",
		"features": features,
	})
}

// Dashboard shows the caller's name and decrypted email
// GET /dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	view := h.authUsecase.Describe(identity.User)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"username": view.Username,
		"email":    view.Email,
	})
}
