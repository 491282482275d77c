package handler

import (
	"time"

	"github.com/google/uuid"

	identityapp "github.com/vendora/backend/internal/application/identity"
)

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,max=255"`
	Role        string `json:"role" binding:"omitempty,oneof=customer vendor"`
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUserResponse represents an account in auth responses
type AuthUserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	VendorApproved bool      `json:"vendor_approved"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse carries the session token and the account it belongs to
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      AuthUserResponse `json:"user"`
}

func toAuthUserResponse(u identityapp.UserResponse) AuthUserResponse {
	return AuthUserResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           string(u.Role),
		VendorApproved: u.VendorApproved,
		CreatedAt:      u.CreatedAt,
	}
}
