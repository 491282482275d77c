package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/shared"
)

// TokenIssuer mints session tokens. Satisfied by the JWT service.
type TokenIssuer interface {
	Issue(user *identity.User) (string, time.Time, error)
}

// AuthService handles registration, login and session lookup
type AuthService struct {
	users  identity.UserRepository
	tokens TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(users identity.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a customer or vendor account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if req.Role == identity.RoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Admin accounts cannot be self-registered")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", shared.ErrAlreadyExists, "an account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the same error so the endpoint does not leak which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, shared.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: ToUserResponse(user), Token: token, ExpiresAt: expiresAt}, nil
}

// Me returns the account behind a session
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}
