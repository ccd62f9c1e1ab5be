package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/herbstock/herbstock/internal/units"
)

// DeductionRow is one ingredient line to deduct from stock.
type DeductionRow struct {
	MaterialID string
	Material   string
	Quantity   float64
	Unit       units.Unit
}

// CheckStock verifies that every row can be served from the current
// latest-record stock. Quantities are normalized to grams for the
// kg/gram family; other units compare as stored. It returns one
// message per insufficient row; an empty slice means the whole bill
// can be deducted.
func CheckStock(rows []DeductionRow, latest map[string]PurchaseRecord) []string {
	var problems []string
	for _, row := range rows {
		if row.Material == "" {
			continue
		}
		rec, ok := latest[row.Material]
		if !ok {
			problems = append(problems, fmt.Sprintf("insufficient stock for %s: material not found", row.Material))
			continue
		}
		available := units.ToGrams(rec.Stock, rec.QuantityUnit)
		required := units.ToGrams(row.Quantity, row.Unit)
		if available < required {
			problems = append(problems, fmt.Sprintf(
				"insufficient stock for %s: required %.2f %s, available %.2f %s",
				rec.Material, row.Quantity, row.Unit, rec.Stock, rec.QuantityUnit))
		}
	}
	return problems
}

// Deduct applies a finalized bill of materials against the ledger. The
// row quantity is converted into the latest record's unit and the
// record's stock is reduced in place, clamped at zero; a deduction
// never creates a new ledger row.
//
// Rows are deducted concurrently and independently: a row whose latest
// record cannot be found or updated is logged and skipped rather than
// failing the whole save.
func (s *Service) Deduct(ctx context.Context, userID int64, rows []DeductionRow) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, row := range rows {
		if row.Material == "" {
			continue
		}
		row := row
		g.Go(func() error {
			rec, err := s.repo.LatestByMaterial(ctx, userID, row.Material)
			if err != nil {
				s.logger.Warn("stock deduction skipped",
					slog.String("material", row.Material),
					slog.Any("error", err))
				return nil
			}
			deduction := units.Convert(row.Quantity, row.Unit, rec.QuantityUnit)
			newStock := math.Max(0, rec.Stock-deduction)
			if err := s.repo.UpdateStock(ctx, userID, rec.ID, newStock); err != nil {
				s.logger.Warn("stock deduction failed",
					slog.String("material", row.Material),
					slog.String("record_id", rec.ID),
					slog.Any("error", err))
				return nil
			}
			if s.audit != nil {
				s.audit.Record(ctx, auditEntry(userID, "ledger:deduct", rec.ID, map[string]any{
					"material":  rec.Material,
					"deducted":  deduction,
					"unit":      string(rec.QuantityUnit),
					"new_stock": newStock,
				}))
			}
			return nil
		})
	}
	err := g.Wait()
	s.invalidateSnapshot(ctx, userID)
	return err
}
