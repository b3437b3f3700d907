package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTokenSessionLifecycle(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewTokenSessionRepository(rdb)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Save(ctx, "jti-1", userID, time.Hour))

	owner, err := repo.Owner(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
	assert.Equal(t, time.Hour, mr.TTL(config.CacheKey.TokenSessionKey("jti-1")))

	require.NoError(t, repo.Delete(ctx, "jti-1"))
	_, err = repo.Owner(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, repo.Delete(ctx, "never-issued"))
}

func TestTokenSessionExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewTokenSessionRepository(rdb)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "jti-2", uuid.New(), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Owner(ctx, "jti-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityQueuePublish(t *testing.T) {
	mr, rdb := newTestRedis(t)
	q := NewActivityQueue(rdb)
	ctx := context.Background()

	ev := model.ActivityEvent{SessionID: uuid.New(), At: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, q.Publish(ctx, ev))
	require.NoError(t, q.Publish(ctx, ev))

	items, err := mr.List(config.WorkerKey.ChatActivityQueue)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var got model.ActivityEvent
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, ev.SessionID, got.SessionID)
	assert.True(t, ev.At.Equal(got.At))
}
