package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the purchase
// ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const purchaseColumns = `id, user_id, material, dealer, gst_number, description,
	quantity, quantity_unit, price_per_unit, price, gst, hamali, transportation,
	min_quantity, min_quantity_unit, stock, updated_cost_per_unit, categories,
	created_at, bill_photo_url`

func scanPurchase(row pgx.Row) (PurchaseRecord, error) {
	var rec PurchaseRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Material, &rec.Dealer, &rec.GSTNumber, &rec.Description,
		&rec.Quantity, &rec.QuantityUnit, &rec.PricePerUnit, &rec.Price, &rec.GST, &rec.Hamali, &rec.Transportation,
		&rec.MinQuantity, &rec.MinQuantityUnit, &rec.Stock, &rec.UpdatedCostPerUnit, &rec.Categories,
		&rec.Timestamp, &rec.BillPhotoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrRecordNotFound
		}
		return PurchaseRecord{}, err
	}
	return rec, nil
}

// Insert appends a purchase row.
func (r *Repository) Insert(ctx context.Context, rec PurchaseRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO material_purchases (`+purchaseColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		rec.ID, rec.UserID, rec.Material, rec.Dealer, rec.GSTNumber, rec.Description,
		rec.Quantity, rec.QuantityUnit, rec.PricePerUnit, rec.Price, rec.GST, rec.Hamali, rec.Transportation,
		rec.MinQuantity, rec.MinQuantityUnit, rec.Stock, rec.UpdatedCostPerUnit, rec.Categories,
		rec.Timestamp, rec.BillPhotoURL,
	)
	return err
}

// Update rewrites an existing purchase row in place.
func (r *Repository) Update(ctx context.Context, rec PurchaseRecord) error {
	tag, err := r.pool.Exec(ctx, `UPDATE material_purchases SET
		material=$3, dealer=$4, gst_number=$5, description=$6,
		quantity=$7, quantity_unit=$8, price_per_unit=$9, price=$10,
		gst=$11, hamali=$12, transportation=$13,
		min_quantity=$14, min_quantity_unit=$15, stock=$16,
		updated_cost_per_unit=$17, categories=$18, bill_photo_url=$19
		WHERE id=$1 AND user_id=$2`,
		rec.ID, rec.UserID, rec.Material, rec.Dealer, rec.GSTNumber, rec.Description,
		rec.Quantity, rec.QuantityUnit, rec.PricePerUnit, rec.Price,
		rec.GST, rec.Hamali, rec.Transportation,
		rec.MinQuantity, rec.MinQuantityUnit, rec.Stock,
		rec.UpdatedCostPerUnit, rec.Categories, rec.BillPhotoURL,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateStock mutates only the running stock of one row. Used by the
// stock deduction engine.
func (r *Repository) UpdateStock(ctx context.Context, userID int64, id string, stock float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE material_purchases SET stock=$3 WHERE id=$1 AND user_id=$2`,
		id, userID, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes a purchase row.
func (r *Repository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM material_purchases WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Get fetches one purchase row.
func (r *Repository) Get(ctx context.Context, userID int64, id string) (PurchaseRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM material_purchases
		WHERE id=$1 AND user_id=$2`, id, userID)
	return scanPurchase(row)
}

// ListAll returns the full purchase history for a user, newest first.
func (r *Repository) ListAll(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM material_purchases
		WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPurchases(rows)
}

// LatestByMaterial returns the most recent purchase of one material.
func (r *Repository) LatestByMaterial(ctx context.Context, userID int64, material string) (PurchaseRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM material_purchases
		WHERE user_id=$1 AND material=$2 ORDER BY created_at DESC LIMIT 1`, userID, material)
	return scanPurchase(row)
}

// HistoryByMaterial returns every purchase of one material, newest
// first. Material names match exactly, case included.
func (r *Repository) HistoryByMaterial(ctx context.Context, userID int64, material string) ([]PurchaseRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM material_purchases
		WHERE user_id=$1 AND material=$2 ORDER BY created_at DESC`, userID, material)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func collectPurchases(rows pgx.Rows) ([]PurchaseRecord, error) {
	var out []PurchaseRecord
	for rows.Next() {
		rec, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
