package pricing

import (
	"strings"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/units"
)

// Margin percentages are fixed, not configurable.
const (
	margin1Rate = 1.13
	margin2Rate = 0.12
)

// PricingResult is the outcome of pricing one bill of materials.
type PricingResult struct {
	Rows         []MaterialUsed
	Calculations Calculations
}

// Price computes per-row costs, the aggregate base cost, the two
// stacked margins and the per-bottle price for a bill of materials.
//
// Ingredient rows take their cost per unit from the material's latest
// snapshot, converted into the row's unit; bottle rows take it from the
// fixed catalog. Packaging cost is numBottles * costPerBottle, where
// costPerBottle may be user-entered rather than catalog-derived.
func Price(name string, rows []Row, bottle BottleInfo, latest map[string]ledger.PurchaseRecord) (PricingResult, error) {
	if strings.TrimSpace(name) == "" {
		return PricingResult{}, ErrProductNameRequired
	}
	if bottle.NumBottles <= 0 {
		return PricingResult{}, ErrInvalidBottleCount
	}

	used := make([]MaterialUsed, 0, len(rows))
	var ingredientCost float64
	for _, row := range rows {
		switch {
		case row.BottleID != "":
			b, ok := LookupBottle(row.BottleID)
			if !ok {
				return PricingResult{}, ErrUnknownBottle
			}
			qty := row.Quantity
			if qty == 0 {
				qty = 1
			}
			total := qty * b.Cost
			ingredientCost += total
			used = append(used, MaterialUsed{
				BottleID:    row.BottleID,
				Quantity:    qty,
				CostPerUnit: b.Cost,
				TotalCost:   total,
			})
		case row.Ingredient():
			rec, ok := latest[row.Material]
			if !ok {
				return PricingResult{}, ErrUnknownMaterial
			}
			var costPerUnit float64
			if rec.UpdatedCostPerUnit != nil {
				costPerUnit = units.ConvertCost(*rec.UpdatedCostPerUnit, rec.QuantityUnit, row.Unit)
			}
			total := row.Quantity * costPerUnit
			ingredientCost += total
			used = append(used, MaterialUsed{
				MaterialID:   row.MaterialID,
				MaterialName: rec.Material,
				Quantity:     row.Quantity,
				Unit:         row.Unit,
				CostPerUnit:  costPerUnit,
				TotalCost:    total,
			})
		default:
			return PricingResult{}, ErrRowUnselected
		}
	}

	bottleCost := float64(bottle.NumBottles) * bottle.CostPerBottle
	baseCost := ingredientCost + bottleCost

	margin1 := baseCost * margin1Rate
	margin2 := (baseCost + margin1) * margin2Rate
	total := baseCost + margin1 + margin2

	return PricingResult{
		Rows: used,
		Calculations: Calculations{
			BaseCost:          baseCost,
			Margin1:           margin1,
			Margin2:           margin2,
			TotalSellingPrice: total,
			GrossPerBottle:    total / float64(bottle.NumBottles),
		},
	}, nil
}
