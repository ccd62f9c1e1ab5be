package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog captures a single mutating action for the audit trail.
type AuditLog struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditLogger persists audit entries. Writes are best effort: failures
// are logged, never returned, so mutations are not blocked by the trail.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditLogger constructs an AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

// Record writes one audit entry. A nil receiver is a no-op so call sites
// never need to guard.
func (a *AuditLogger) Record(ctx context.Context, entry AuditLog) {
	if a == nil || a.pool == nil {
		return
	}
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		meta = []byte(`{}`)
	}
	_, err = a.pool.Exec(ctx, `
        INSERT INTO audit_logs (user_id, action, entity, entity_id, meta, created_at)
        VALUES ($1, $2, $3, $4, $5, now())`,
		entry.UserID, entry.Action, entry.Entity, entry.EntityID, meta)
	if err != nil {
		a.logger.Warn("audit write failed",
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err))
	}
}

// List returns the most recent audit entries for a user.
func (a *AuditLogger) List(ctx context.Context, userID int64, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := a.pool.Query(ctx, `
        SELECT id, user_id, action, entity, entity_id, meta, created_at
        FROM audit_logs
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditLog
	for rows.Next() {
		var entry AuditLog
		var meta []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Entity, &entry.EntityID, &meta, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &entry.Meta)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
