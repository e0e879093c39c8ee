package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/repository"
	"github.com/yukikurage/task-rest-api/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInactiveUser       = errors.New("inactive user")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
	tokens   *security.TokenService

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher *security.PasswordHasher, tokens *security.TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates a new user. There is no existence check before the
// insert; the unique index on email decides which of two concurrent
// registrations wins.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		if security.IsTooLong(err) {
			return nil, ErrPasswordTooLong
		}
		return nil, err
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a verified user with a freshly issued access token.
type LoginResult struct {
	User        *models.User
	AccessToken string
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords fail identically, and both pay for a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(input.Password, s.dummyDigest())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.tokens.TTL())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token}, nil
}

// Authenticate resolves a bearer token to an active user. Every rejection
// wraps ErrNotAuthenticated; other errors come from the store.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrNotAuthenticated)
	}

	email, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrInactiveUser)
	}

	return user, nil
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		// An error leaves the digest empty; Verify then fails fast, which
		// only weakens the timing equalisation.
		s.dummyHash, _ = s.hasher.Hash("timing-equalisation-placeholder")
	})
	return s.dummyHash
}
