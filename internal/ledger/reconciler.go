package ledger

import (
	"strings"
	"time"

	"github.com/herbstock/herbstock/internal/units"
)

// Reconcile computes the derived fields of a new purchase entry against
// the previous latest record for the same material. prev is nil for the
// first purchase of a material, in which case stock defaults to the raw
// purchase quantity and the derived fields stay free for manual entry.
//
// Derived fields honour their per-field override: a manually pinned
// value is carried through untouched while the remaining fields keep
// auto-computing from their own formulas.
func Reconcile(entry Entry, prev *PurchaseRecord, now time.Time) (PurchaseRecord, error) {
	if strings.TrimSpace(entry.Material) == "" {
		return PurchaseRecord{}, ErrMaterialRequired
	}
	if !entry.QuantityUnit.Valid() {
		return PurchaseRecord{}, ErrInvalidUnit
	}
	if entry.Quantity < 0 {
		return PurchaseRecord{}, ErrNegativeQuantity
	}

	rec := PurchaseRecord{
		Material:        strings.TrimSpace(entry.Material),
		Dealer:          entry.Dealer,
		GSTNumber:       entry.GSTNumber,
		Description:     entry.Description,
		Quantity:        entry.Quantity,
		QuantityUnit:    entry.QuantityUnit,
		PricePerUnit:    entry.PricePerUnit,
		GST:             entry.GST,
		Hamali:          entry.Hamali,
		Transportation:  entry.Transportation,
		MinQuantity:     entry.MinQuantity,
		MinQuantityUnit: entry.MinQuantityUnit,
		Categories:      entry.Categories,
		BillPhotoURL:    entry.BillPhotoURL,
		Timestamp:       now,
	}

	// Purchase price excludes surcharges; they only feed the
	// weighted cost per unit.
	purchasePrice := entry.Quantity * entry.PricePerUnit
	if entry.Price.Manual() {
		rec.Price = entry.Price.Value
	} else {
		rec.Price = purchasePrice
	}

	totalCost := purchasePrice + entry.GST + entry.Hamali + entry.Transportation
	switch {
	case entry.CostPerUnit.Manual():
		v := entry.CostPerUnit.Value
		rec.UpdatedCostPerUnit = &v
	case entry.Quantity > 0:
		v := totalCost / entry.Quantity
		rec.UpdatedCostPerUnit = &v
	default:
		// Zero quantity: the cost per unit is unrepresentable and
		// stays blank rather than dividing by zero.
		rec.UpdatedCostPerUnit = nil
	}

	switch {
	case entry.Stock.Manual():
		rec.Stock = entry.Stock.Value
	case prev != nil:
		prevStock := units.Convert(prev.Stock, prev.QuantityUnit, entry.QuantityUnit)
		rec.Stock = prevStock + entry.Quantity
	default:
		rec.Stock = entry.Quantity
	}

	return rec, nil
}
