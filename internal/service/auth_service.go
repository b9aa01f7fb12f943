package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TokenGeneratorInterface issues admin bearer tokens.
type TokenGeneratorInterface interface {
	GenerateAdminToken(username string) (string, error)
}

// AuthService verifies the single configured admin account and issues
// bearer tokens for the management endpoints.
type AuthService struct {
	username     string
	passwordHash []byte
	tokens       TokenGeneratorInterface
}

// NewAuthService creates an AuthService for the configured admin account.
// The plaintext password from configuration is hashed once here so login
// always goes through a bcrypt comparison.
func NewAuthService(username, password string, tokens TokenGeneratorInterface) (*AuthService, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("admin credentials not configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{
		username:     username,
		passwordHash: hash,
		tokens:       tokens,
	}, nil
}

// Login verifies the credentials and returns a signed bearer token.
// Returns ErrInvalidCredentials on any mismatch; the caller cannot tell
// whether the username or the password was wrong.
func (s *AuthService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAdminToken(username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
