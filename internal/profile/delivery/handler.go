package delivery

import (
	"net/http"

	authdelivery "questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/profile/usecase"
	"questlog-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's own profile
type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profileUsecase: profileUsecase}
}

// GetProfile returns the decrypted profile
// GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	c.Header("Cache-Control", "no-store")

	profile, err := h.profileUsecase.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile validates and stores name, email and bio
// POST /profile/update
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	c.Header("Cache-Control", "no-store")

	var req usecase.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(c.Request.Context(), identity.UserID, req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": profile})
}
