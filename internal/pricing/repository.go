package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists product price records in postgres. The frozen
// materials list and the calculation block are stored as jsonb since
// they are immutable snapshots, never queried field-by-field.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const priceColumns = `id, user_id, name, description, materials_used, bottle_info, calculations, created_at`

func (r *Repository) Insert(ctx context.Context, rec ProductPriceRecord) error {
	materials, err := json.Marshal(rec.MaterialsUsed)
	if err != nil {
		return fmt.Errorf("marshal materials used: %w", err)
	}
	bottle, err := json.Marshal(rec.BottleInfo)
	if err != nil {
		return fmt.Errorf("marshal bottle info: %w", err)
	}
	calc, err := json.Marshal(rec.Calculations)
	if err != nil {
		return fmt.Errorf("marshal calculations: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
        INSERT INTO product_prices (id, user_id, name, description, materials_used, bottle_info, calculations, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.UserID, rec.Name, rec.Description, materials, bottle, calc, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert product price: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, userID int64) ([]ProductPriceRecord, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+priceColumns+`
        FROM product_prices
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list product prices: %w", err)
	}
	defer rows.Close()

	var out []ProductPriceRecord
	for rows.Next() {
		rec, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, userID int64, id string) (ProductPriceRecord, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+priceColumns+`
        FROM product_prices
        WHERE user_id = $1 AND id = $2`, userID, id)
	rec, err := scanPrice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductPriceRecord{}, ErrRecordNotFound
		}
		return ProductPriceRecord{}, err
	}
	return rec, nil
}

func (r *Repository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `
        DELETE FROM product_prices
        WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete product price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func scanPrice(row pgx.Row) (ProductPriceRecord, error) {
	var rec ProductPriceRecord
	var materials, bottle, calc []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Description, &materials, &bottle, &calc, &rec.Timestamp)
	if err != nil {
		return ProductPriceRecord{}, err
	}
	if err := json.Unmarshal(materials, &rec.MaterialsUsed); err != nil {
		return ProductPriceRecord{}, fmt.Errorf("unmarshal materials used: %w", err)
	}
	if err := json.Unmarshal(bottle, &rec.BottleInfo); err != nil {
		return ProductPriceRecord{}, fmt.Errorf("unmarshal bottle info: %w", err)
	}
	if err := json.Unmarshal(calc, &rec.Calculations); err != nil {
		return ProductPriceRecord{}, fmt.Errorf("unmarshal calculations: %w", err)
	}
	return rec, nil
}
