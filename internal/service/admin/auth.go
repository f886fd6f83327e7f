package admin

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mousebot/internal/domain"
)

// AuthService issues and verifies the admin session tokens guarding
// the dashboard API. One shared password, HS256 session tokens with a
// bounded lifetime.
type AuthService struct {
	password   string
	signingKey []byte
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates the admin auth service.
func NewAuthService(password string, signingKey []byte, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		password:   password,
		signingKey: signingKey,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies the admin password and returns a session token.
func (s *AuthService) Login(password string) (string, error) {
	if s.password == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", &domain.UnauthorizedError{Message: "wrong password"}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("admin session issued", "expires_in", s.sessionTTL)

	return signed, nil
}

// VerifyToken checks an admin session token.
func (s *AuthService) VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return &domain.UnauthorizedError{Message: "invalid session"}
	}

	return nil
}
