package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/units"
)

func costPtr(v float64) *float64 { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func TestPriceMarginStacking(t *testing.T) {
	// Base cost of exactly 1000 from packaging alone.
	result, err := Price("Tonic", nil, BottleInfo{NumBottles: 10, CostPerBottle: 100}, nil)
	require.NoError(t, err)

	calc := result.Calculations
	require.Equal(t, 1000.0, calc.BaseCost)
	require.Equal(t, 1130.00, round2(calc.Margin1))
	require.Equal(t, 255.60, round2(calc.Margin2))
	require.Equal(t, 2385.60, round2(calc.TotalSellingPrice))
	require.Equal(t, 238.56, round2(calc.GrossPerBottle))
}

func TestPriceIngredientCostConvertsUnits(t *testing.T) {
	latest := map[string]ledger.PurchaseRecord{
		"Ashwagandha": {
			Material:           "Ashwagandha",
			QuantityUnit:       units.UnitKg,
			UpdatedCostPerUnit: costPtr(500), // per kg
		},
	}
	rows := []Row{
		{MaterialID: "m1", Material: "Ashwagandha", Quantity: 200, Unit: units.UnitGram},
	}

	result, err := Price("Tonic", rows, BottleInfo{NumBottles: 1}, latest)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.InDelta(t, 0.5, result.Rows[0].CostPerUnit, 1e-9)
	require.InDelta(t, 100.0, result.Rows[0].TotalCost, 1e-9)
	require.InDelta(t, 100.0, result.Calculations.BaseCost, 1e-9)
}

func TestPriceBottleRowUsesCatalog(t *testing.T) {
	rows := []Row{{BottleID: "bottle_dropper_30ml", Quantity: 4}}
	result, err := Price("Tonic", rows, BottleInfo{NumBottles: 1}, nil)
	require.NoError(t, err)
	require.Equal(t, 25.00, result.Rows[0].CostPerUnit)
	require.Equal(t, 100.00, result.Rows[0].TotalCost)
}

func TestPriceBlankCostTreatedAsZero(t *testing.T) {
	latest := map[string]ledger.PurchaseRecord{
		"Brahmi": {Material: "Brahmi", QuantityUnit: units.UnitKg},
	}
	rows := []Row{{Material: "Brahmi", Quantity: 3, Unit: units.UnitKg}}

	result, err := Price("Tonic", rows, BottleInfo{NumBottles: 1}, latest)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Rows[0].TotalCost)
}

func TestPriceValidation(t *testing.T) {
	_, err := Price("", nil, BottleInfo{NumBottles: 1}, nil)
	require.ErrorIs(t, err, ErrProductNameRequired)

	_, err = Price("Tonic", nil, BottleInfo{NumBottles: 0}, nil)
	require.ErrorIs(t, err, ErrInvalidBottleCount)

	_, err = Price("Tonic", []Row{{}}, BottleInfo{NumBottles: 1}, nil)
	require.ErrorIs(t, err, ErrRowUnselected)

	_, err = Price("Tonic", []Row{{BottleID: "bottle_9999ml"}}, BottleInfo{NumBottles: 1}, nil)
	require.ErrorIs(t, err, ErrUnknownBottle)

	_, err = Price("Tonic", []Row{{Material: "Ghost", Quantity: 1, Unit: units.UnitKg}}, BottleInfo{NumBottles: 1}, nil)
	require.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestLookupBottleCatalog(t *testing.T) {
	require.Len(t, Bottles(), 7)
	b, ok := LookupBottle("bottle_glass_200ml")
	require.True(t, ok)
	require.Equal(t, 20.00, b.Cost)
	_, ok = LookupBottle("nope")
	require.False(t, ok)
}
