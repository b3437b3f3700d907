package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// TokenSessionRepository tracks live access tokens in Redis, keyed by JTI.
// A token whose key is missing has been revoked or has expired.
type TokenSessionRepository struct {
	rdb *redis.Client
}

// NewTokenSessionRepository creates a new TokenSessionRepository.
func NewTokenSessionRepository(rdb *redis.Client) *TokenSessionRepository {
	return &TokenSessionRepository{rdb: rdb}
}

// Save registers a token for userID with the same lifetime as the JWT.
func (r *TokenSessionRepository) Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.TokenSessionKey(jti), userID.String(), ttl).Err()
}

// Owner returns the user a live token belongs to, or ErrNotFound.
func (r *TokenSessionRepository) Owner(ctx context.Context, jti string) (uuid.UUID, error) {
	v, err := r.rdb.Get(ctx, config.CacheKey.TokenSessionKey(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return uuid.Parse(v)
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (r *TokenSessionRepository) Delete(ctx context.Context, jti string) error {
	return r.rdb.Del(ctx, config.CacheKey.TokenSessionKey(jti)).Err()
}
