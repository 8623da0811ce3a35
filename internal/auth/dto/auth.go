package dto

import (
	"time"

	authdomain "questlog-backend/internal/auth/domain"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// TokenPair is the result of issuing or refreshing tokens. RefreshToken is
// empty when the refresh token was not rotated.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserResponse is the caller-facing view of a user with decrypted fields.
type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Name      string          `json:"name,omitempty"`
	Email     string          `json:"email"`
	Bio       string          `json:"bio,omitempty"`
	Role      authdomain.Role `json:"role"`
	Provider  string          `json:"provider"`
	CreatedAt time.Time       `json:"created_at"`
}
