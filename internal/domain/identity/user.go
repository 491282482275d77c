package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vendora/backend/internal/domain/shared"
)

// Role represents a user's role in the marketplace
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

// IsValid checks if the role is recognized
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer:
		return true
	}
	return false
}

// User represents a marketplace account: admin, vendor, or customer
type User struct {
	shared.BaseEntity
	Email          string `gorm:"uniqueIndex"`
	PasswordHash   string
	DisplayName    string
	Role           Role
	VendorApproved bool
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(email, password, displayName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if displayName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Display name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ApproveVendor marks a vendor account as approved for selling
func (u *User) ApproveVendor() error {
	if u.Role != RoleVendor {
		return shared.NewDomainError("INVALID_ROLE", "Only vendor accounts can be approved")
	}
	u.VendorApproved = true
	u.Touch()
	return nil
}

// CanSell reports whether the user may manage products and coupons
func (u *User) CanSell() bool {
	return u.Role == RoleAdmin || (u.Role == RoleVendor && u.VendorApproved)
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
