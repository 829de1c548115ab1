package service

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService is the concrete implementation of AuthService
type authService struct {
	username     string
	passwordHash []byte
	log          zerolog.Logger
}

// newAuthService creates a new AuthService for the single admin account
func newAuthService(username, passwordHash string, log zerolog.Logger) *authService {
	return &authService{
		username:     username,
		passwordHash: []byte(passwordHash),
		log:          log.With().Str("service", "auth").Logger(),
	}
}

// Login checks the admin credentials. The password hash is always compared
// so a wrong username costs the same as a wrong password.
func (s *authService) Login(ctx context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))

	if !userOK || passErr != nil {
		s.log.Warn().Str("login", username).Msg("Admin login rejected")
		return ErrBadCredentials
	}

	s.log.Info().Str("login", username).Msg("Admin logged in")
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
