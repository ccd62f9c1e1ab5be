package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/herbstock/herbstock/internal/jobs"
)

const (
	// TaskIdempotencyCleanup removes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// IdempotencyCleanupPayload carries scheduling metadata.
type IdempotencyCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewIdempotencyCleanupTask constructs an asynq task for key cleanup.
func NewIdempotencyCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}

// KeyCleaner removes expired keys and reports how many went away.
type KeyCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// NewIdempotencyCleanupHandler builds the handler for
// TaskIdempotencyCleanup.
func NewIdempotencyCleanupHandler(store KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("idempotency_cleanup")

		removed, err := store.Cleanup(ctx)
		if err != nil {
			return tracker.End(err)
		}
		if removed > 0 {
			logger.Info("expired idempotency keys removed", slog.Int64("count", removed))
		}
		return tracker.End(nil)
	}
}
