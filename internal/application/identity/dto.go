package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/identity"
)

// RegisterRequest creates a new account. Role may be customer or vendor;
// admin accounts are seeded, never self-registered.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Role        identity.Role
}

// LoginRequest authenticates an existing account
type LoginRequest struct {
	Email    string
	Password string
}

// UserResponse represents a user in service responses
type UserResponse struct {
	ID             uuid.UUID
	Email          string
	DisplayName    string
	Role           identity.Role
	VendorApproved bool
	CreatedAt      time.Time
}

// LoginResult carries the authenticated user and their session token
type LoginResult struct {
	User      UserResponse
	Token     string
	ExpiresAt time.Time
}

// ToUserResponse converts a domain user to its response form
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           u.Role,
		VendorApproved: u.VendorApproved,
		CreatedAt:      u.CreatedAt,
	}
}
