package worker

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/metrics"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ActivityBatchSize    = 50
	ActivityBatchTimeout = 2 * time.Second
	ActivityPollTimeout  = 1 * time.Second
)

// ActivityWorker applies queued chat activity to the chat_sessions
// last_active and total_messages columns.
type ActivityWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewActivityWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ActivityWorker {
	return &ActivityWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "activity_worker").Logger(),
	}
}

// SessionActivity is the net effect of a batch of events on one session.
type SessionActivity struct {
	SessionID  uuid.UUID
	Messages   int
	LastActive time.Time
}

// Collapse folds events into one entry per session, ordered by session ID.
func Collapse(events []model.ActivityEvent) []SessionActivity {
	bySession := make(map[uuid.UUID]*SessionActivity, len(events))
	for _, ev := range events {
		a, ok := bySession[ev.SessionID]
		if !ok {
			a = &SessionActivity{SessionID: ev.SessionID}
			bySession[ev.SessionID] = a
		}
		a.Messages++
		if ev.At.After(a.LastActive) {
			a.LastActive = ev.At
		}
	}

	out := make([]SessionActivity, 0, len(bySession))
	for _, a := range bySession {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionID.String() < out[j].SessionID.String()
	})
	return out
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ActivityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ActivityWorker started")

	batch := make([]model.ActivityEvent, 0, ActivityBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ActivityBatchSize || time.Since(lastFlush) >= ActivityBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Draining queue...")
			w.drain(context.Background(), batch)
			w.log.Info().Msg("ActivityWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, ActivityPollTimeout, config.WorkerKey.ChatActivityQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev model.ActivityEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

// ----------------------------------------------------------------
// Shutdown drain
// ----------------------------------------------------------------

// drain flushes batch together with the events still queued in Redis. It
// pops at most the queue length seen on entry, so events requeued by a
// failed flush are left for the next start.
func (w *ActivityWorker) drain(ctx context.Context, batch []model.ActivityEvent) {
	queued, err := w.rdb.LLen(ctx, config.WorkerKey.ChatActivityQueue).Result()
	if err != nil {
		w.log.Error().Err(err).Msg("Drain LLen error")
	}

	drained := 0
	for remaining := int(queued); remaining > 0; {
		if len(batch) >= ActivityBatchSize {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
		}

		events, popped := w.popQueued(ctx, min(ActivityBatchSize-len(batch), remaining))
		if popped == 0 {
			break
		}
		remaining -= popped
		drained += len(events)
		batch = append(batch, events...)
	}
	w.flushSafe(ctx, batch)

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

// popQueued pops up to limit items without blocking. It returns the decoded
// events and how many items were removed, including undecodable ones.
func (w *ActivityWorker) popQueued(ctx context.Context, limit int) ([]model.ActivityEvent, int) {
	events := make([]model.ActivityEvent, 0, limit)
	popped := 0
	for popped < limit {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.ChatActivityQueue).Result()
		if err != nil {
			if err != redis.Nil {
				w.log.Error().Err(err).Msg("Drain LPop error")
			}
			break
		}
		popped++

		var ev model.ActivityEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}
		events = append(events, ev)
	}
	return events, popped
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

func (w *ActivityWorker) flushSafe(ctx context.Context, batch []model.ActivityEvent) {
	if len(batch) == 0 {
		return
	}

	collapsed := Collapse(batch)
	if err := w.bulkApply(ctx, collapsed); err != nil {
		w.log.Warn().Err(err).Msg("bulk activity update failed, using fallback")

		for _, a := range collapsed {
			if err := w.applySingle(ctx, a); err != nil {
				w.log.Error().Err(err).Str("session_id", a.SessionID.String()).Msg("applySingle failed, requeueing")
				w.requeue(ctx, a)
				continue
			}
			metrics.ActivityEventsFlushed.Add(float64(a.Messages))
		}
		return
	}

	metrics.ActivityEventsFlushed.Add(float64(len(batch)))
}

func (w *ActivityWorker) requeue(ctx context.Context, a SessionActivity) {
	raw, _ := json.Marshal(model.ActivityEvent{SessionID: a.SessionID, At: a.LastActive})
	pipe := w.rdb.Pipeline()
	for i := 0; i < a.Messages; i++ {
		pipe.RPush(ctx, config.WorkerKey.ChatActivityQueue, raw)
	}
	_, _ = pipe.Exec(ctx)
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *ActivityWorker) bulkApply(ctx context.Context, collapsed []SessionActivity) error {
	n := len(collapsed)

	sessionIDs := make([]uuid.UUID, 0, n)
	counts := make([]int, 0, n)
	lastActives := make([]time.Time, 0, n)
	for _, a := range collapsed {
		sessionIDs = append(sessionIDs, a.SessionID)
		counts = append(counts, a.Messages)
		lastActives = append(lastActives, a.LastActive)
	}

	query := `
		UPDATE chat_sessions AS s
		SET total_messages = s.total_messages + t.messages,
		    last_active = GREATEST(s.last_active, t.last_active)
		FROM (
			SELECT
				u.session_id,
				u.messages,
				u.last_active
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::timestamptz[]
			) AS u (session_id, messages, last_active)
		) AS t
		WHERE s.id = t.session_id
	`

	_, err := w.pool.Exec(ctx, query, sessionIDs, counts, lastActives)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *ActivityWorker) applySingle(ctx context.Context, a SessionActivity) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE chat_sessions
		 SET total_messages = total_messages + $1,
		     last_active = GREATEST(last_active, $2)
		 WHERE id = $3`,
		a.Messages, a.LastActive, a.SessionID,
	)
	return err
}
