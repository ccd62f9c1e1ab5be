package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIdempotencyConflict signals that a key was already claimed by a
// different request.
var ErrIdempotencyConflict = errors.New("idempotency key already used")

// IdempotencyStore claims request keys so retried mutations run once.
type IdempotencyStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewIdempotencyStore constructs an IdempotencyStore. Keys older than ttl
// are eligible for cleanup.
func NewIdempotencyStore(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{pool: pool, ttl: ttl}
}

// Claim registers a key for a user and operation. Returns
// ErrIdempotencyConflict when the key exists already.
func (s *IdempotencyStore) Claim(ctx context.Context, userID int64, operation, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO idempotency_keys (user_id, operation, key, created_at)
        VALUES ($1, $2, $3, now())`,
		userID, operation, key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Release frees a claimed key so a failed operation can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, userID int64, operation, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
        DELETE FROM idempotency_keys
        WHERE user_id = $1 AND operation = $2 AND key = $3`,
		userID, operation, key)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

// Cleanup removes expired keys and reports how many were deleted.
func (s *IdempotencyStore) Cleanup(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM idempotency_keys
        WHERE created_at < now() - $1::interval`,
		s.ttl.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
