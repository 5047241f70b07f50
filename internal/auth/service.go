package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

var (
	// ErrInvalidCredentials is returned when a credential cannot be verified.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidEmail is returned when the email is malformed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides authentication operations: registration, login, and
// bearer credential verification for live sessions.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with hashed password and returns the user and
// a signed token. Location is optional.
func (s *Service) Register(ctx context.Context, username, email, password string, location *geo.Point) (*store.User, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, "", ErrInvalidUsername
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, "", ErrInvalidPassword
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, email, hashedPassword, location)
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login validates credentials and returns the user and a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Verify validates a bearer credential and returns the caller's identity.
// It is stateless and safe for concurrent use from any number of sessions.
func (s *Service) Verify(credential string) (int64, error) {
	claims, err := ValidateToken(s.jwtConfig, credential)
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	return claims.UserID, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
