package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/pkg/utils"
)

// TokenIssuer mints a signed token for an authenticated user
type TokenIssuer interface {
	Issue(user *entity.User) (token string, expiresAt time.Time, err error)
}

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// RegisterUserInput carries a new committee account
type RegisterUserInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     entity.Role
	Region   entity.Region
}

// LoginInput carries credentials; role and region narrow the lookup when
// several accounts share a username
type LoginInput struct {
	Username string
	Password string
	Role     entity.Role
	Region   entity.Region
}

// AuthResult is a successful registration or login
type AuthResult struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuthService manages committee accounts and login
type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
}

type authServiceImpl struct {
	users  port.UserRepository
	tokens TokenIssuer
	hasher PasswordHasher
	logger Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users port.UserRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	logger Logger,
) AuthService {
	return &authServiceImpl{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// RegisterUser creates an account and returns a fresh token
func (s *authServiceImpl) RegisterUser(ctx context.Context, input RegisterUserInput) (*AuthResult, error) {
	if err := validateRegisterUser(input); err != nil {
		return nil, err
	}

	if input.Email != "" {
		exists, err := s.users.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: email already registered", entity.ErrConflict)
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Region:       input.Region,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", "error", err, "username", input.Username)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User registered",
		"user_id", user.ID,
		"role", user.Role.String(),
		"region", user.Region.String())
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Login authenticates by username or email. Usernames are not unique, so
// every candidate is tried against the password before giving up.
func (s *authServiceImpl) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", entity.ErrValidation)
	}

	candidates, err := s.users.FindForLogin(ctx, input.Username, input.Role, input.Region)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var user *entity.User
	for _, candidate := range candidates {
		if s.hasher.Compare(candidate.PasswordHash, input.Password) == nil {
			user = candidate
			break
		}
	}
	if user == nil {
		s.logger.Info("Login rejected", "username", input.Username)
		return nil, fmt.Errorf("%w: invalid credentials", entity.ErrValidation)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role.String())
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUser retrieves an account by id
func (s *authServiceImpl) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns every committee account
func (s *authServiceImpl) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.users.List(ctx)
}

func validateRegisterUser(input RegisterUserInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", entity.ErrValidation)
	}
	if strings.TrimSpace(input.Username) == "" {
		return fmt.Errorf("%w: username is required", entity.ErrValidation)
	}
	if len(input.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", entity.ErrValidation)
	}
	if !input.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", entity.ErrValidation, input.Role)
	}
	if !input.Region.IsValid() {
		return fmt.Errorf("%w: unknown region %q", entity.ErrValidation, input.Region)
	}
	if input.Email != "" {
		if err := utils.ValidateEmail(input.Email); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrValidation, err)
		}
	}
	return nil
}
