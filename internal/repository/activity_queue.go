package repository

import (
	"context"
	"encoding/json"

	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// ActivityQueue pushes chat activity events for the activity worker.
type ActivityQueue struct {
	rdb *redis.Client
}

// NewActivityQueue creates a new ActivityQueue.
func NewActivityQueue(rdb *redis.Client) *ActivityQueue {
	return &ActivityQueue{rdb: rdb}
}

// Publish appends an event to the tail of the queue.
func (q *ActivityQueue) Publish(ctx context.Context, ev model.ActivityEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.ChatActivityQueue, raw).Err()
}
