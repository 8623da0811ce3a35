package delivery

import (
	"log"
	"net/http"

	authdto "questlog-backend/internal/auth/dto"
	"questlog-backend/internal/auth/repository"
	"questlog-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// DeviceHandler manages the push targets used for security alerts
type DeviceHandler struct {
	deviceRepo repository.DeviceTokenRepository
}

func NewDeviceHandler(deviceRepo repository.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{deviceRepo: deviceRepo}
}

// Register stores a push token for the caller
// POST /devices
func (h *DeviceHandler) Register(c *gin.Context) {
	identity, _ := IdentityFrom(c)
	var req authdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	if err := h.deviceRepo.SaveToken(c.Request.Context(), identity.UserID, req.Token, req.DeviceInfo); err != nil {
		apperror.Respond(c, apperror.Transient("failed to register device", err))
		return
	}
	log.Printf("[Device] Registered push token for user %s", identity.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}

// Unregister removes one of the caller's push tokens
// DELETE /devices/:token
func (h *DeviceHandler) Unregister(c *gin.Context) {
	identity, _ := IdentityFrom(c)
	if err := h.deviceRepo.DeleteToken(c.Request.Context(), identity.UserID, c.Param("token")); err != nil {
		apperror.Respond(c, apperror.Transient("failed to remove device", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device removed"})
}
