package drugs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists drug records in postgres. The free-form extra
// fields travel as jsonb.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const drugColumns = `id, user_id, drug_name, quantity, quantity_unit, price, price_per_unit, preparation, extra_fields, created_at`

func (r *Repository) Insert(ctx context.Context, rec DrugRecord) error {
	extra, err := json.Marshal(rec.ExtraFields)
	if err != nil {
		return fmt.Errorf("marshal extra fields: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
        INSERT INTO drug_records (id, user_id, drug_name, quantity, quantity_unit, price, price_per_unit, preparation, extra_fields, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, rec.DrugName, rec.Quantity, rec.QuantityUnit, rec.Price,
		rec.PricePerUnit, rec.Preparation, extra, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert drug record: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, rec DrugRecord) error {
	extra, err := json.Marshal(rec.ExtraFields)
	if err != nil {
		return fmt.Errorf("marshal extra fields: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
        UPDATE drug_records
        SET drug_name = $3, quantity = $4, quantity_unit = $5, price = $6,
            price_per_unit = $7, preparation = $8, extra_fields = $9
        WHERE id = $1 AND user_id = $2`,
		rec.ID, rec.UserID, rec.DrugName, rec.Quantity, rec.QuantityUnit, rec.Price,
		rec.PricePerUnit, rec.Preparation, extra)
	if err != nil {
		return fmt.Errorf("update drug record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `
        DELETE FROM drug_records
        WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete drug record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, userID int64, id string) (DrugRecord, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+drugColumns+`
        FROM drug_records
        WHERE user_id = $1 AND id = $2`, userID, id)
	rec, err := scanDrug(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DrugRecord{}, ErrRecordNotFound
		}
		return DrugRecord{}, err
	}
	return rec, nil
}

func (r *Repository) ListAll(ctx context.Context, userID int64) ([]DrugRecord, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+drugColumns+`
        FROM drug_records
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list drug records: %w", err)
	}
	defer rows.Close()

	var out []DrugRecord
	for rows.Next() {
		rec, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanDrug(row pgx.Row) (DrugRecord, error) {
	var rec DrugRecord
	var extra []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.DrugName, &rec.Quantity, &rec.QuantityUnit,
		&rec.Price, &rec.PricePerUnit, &rec.Preparation, &extra, &rec.Timestamp)
	if err != nil {
		return DrugRecord{}, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &rec.ExtraFields); err != nil {
			return DrugRecord{}, fmt.Errorf("unmarshal extra fields: %w", err)
		}
	}
	return rec, nil
}
