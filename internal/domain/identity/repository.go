package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks whether an account with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}
