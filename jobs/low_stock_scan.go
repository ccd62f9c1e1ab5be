package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/herbstock/herbstock/internal/ledger"
	jobmetrics "github.com/herbstock/herbstock/internal/jobs"
)

const (
	// TaskLowStockScan triggers the nightly reorder scan.
	TaskLowStockScan = "ledger:low_stock_scan"
)

// LowStockScanPayload carries scheduling metadata.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an asynq task for the reorder scan.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// UserSource lists the accounts to scan.
type UserSource interface {
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
}

// LowStockSource projects a user's ledger to the materials below their
// reorder threshold.
type LowStockSource interface {
	LowStock(ctx context.Context, userID int64) ([]ledger.PurchaseRecord, error)
}

// NewLowStockScanHandler builds the handler for TaskLowStockScan. The
// scan walks every account and logs a reorder summary per user; it is
// observational only and never mutates the ledger.
func NewLowStockScanHandler(users UserSource, source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("low_stock_scan")

		ids, err := users.ListActiveUserIDs(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, userID := range ids {
			low, err := source.LowStock(ctx, userID)
			if err != nil {
				logger.Warn("low stock scan failed for user",
					slog.Int64("user_id", userID),
					slog.Any("error", err))
				continue
			}
			if len(low) == 0 {
				continue
			}
			names := make([]string, 0, len(low))
			for _, rec := range low {
				names = append(names, rec.Material)
			}
			logger.Info("materials below reorder threshold",
				slog.Int64("user_id", userID),
				slog.Int("count", len(low)),
				slog.Any("materials", names))
		}
		return tracker.End(nil)
	}
}
