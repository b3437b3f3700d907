package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID      `json:"user_id"`
	UserType model.UserType `json:"user_type"`
}

// IssuedToken is an access token together with its expiry.
type IssuedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService handles password hashing, JWTs and token sessions.
type AuthService struct {
	cfg      *config.Config
	sessions TokenSessionStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, sessions TokenSessionStore) *AuthService {
	return &AuthService{cfg: cfg, sessions: sessions}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a JWT for a user and registers its JTI in the session store.
func (s *AuthService) GenerateToken(ctx context.Context, user *model.User) (*IssuedToken, error) {
	jti := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		UserType: user.UserType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, jti, user.ID, s.cfg.JWTExpiry); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &IssuedToken{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
// An expired token yields an error matching jwt.ErrTokenExpired.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token has not been revoked.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	owner, err := s.sessions.Owner(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if owner != claims.UserID {
		return ErrSessionInvalidated
	}
	return nil
}

// RevokeToken ends the session of the given token.
func (s *AuthService) RevokeToken(ctx context.Context, claims *Claims) error {
	return s.sessions.Delete(ctx, claims.ID)
}
