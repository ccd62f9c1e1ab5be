package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/units"
)

func TestReconcileFirstPurchase(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec, err := Reconcile(Entry{
		Material:       "Ashwagandha",
		Quantity:       2,
		QuantityUnit:   units.UnitKg,
		PricePerUnit:   450,
		GST:            90,
		Hamali:         20,
		Transportation: 50,
	}, nil, now)
	require.NoError(t, err)

	require.Equal(t, 900.0, rec.Price)
	require.NotNil(t, rec.UpdatedCostPerUnit)
	require.InDelta(t, (900.0+90+20+50)/2, *rec.UpdatedCostPerUnit, 1e-9)
	require.Equal(t, 2.0, rec.Stock)
	require.Equal(t, now, rec.Timestamp)
}

func TestReconcileAccumulatesStockAcrossUnits(t *testing.T) {
	prev := PurchaseRecord{
		Material:     "Ashwagandha",
		Stock:        1.5,
		QuantityUnit: units.UnitKg,
	}
	rec, err := Reconcile(Entry{
		Material:     "Ashwagandha",
		Quantity:     250,
		QuantityUnit: units.UnitGram,
		PricePerUnit: 0.5,
	}, &prev, time.Now())
	require.NoError(t, err)

	// 1.5 kg carried forward as 1500 grams plus the 250 gram purchase.
	require.Equal(t, 1750.0, rec.Stock)
	require.Equal(t, units.UnitGram, rec.QuantityUnit)
}

func TestReconcileZeroQuantityLeavesCostBlank(t *testing.T) {
	rec, err := Reconcile(Entry{
		Material:     "Brahmi",
		Quantity:     0,
		QuantityUnit: units.UnitKg,
		GST:          100,
	}, nil, time.Now())
	require.NoError(t, err)

	require.Nil(t, rec.UpdatedCostPerUnit)
	require.Equal(t, 0.0, rec.Price)
	require.Equal(t, 0.0, rec.Stock)
}

func TestReconcileManualOverridesAreIndependent(t *testing.T) {
	prev := PurchaseRecord{Material: "Brahmi", Stock: 10, QuantityUnit: units.UnitKg}
	rec, err := Reconcile(Entry{
		Material:     "Brahmi",
		Quantity:     5,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 100,
		Stock:        Override{Mode: FieldManual, Value: 42},
	}, &prev, time.Now())
	require.NoError(t, err)

	// Stock is pinned; price and cost still auto-compute.
	require.Equal(t, 42.0, rec.Stock)
	require.Equal(t, 500.0, rec.Price)
	require.NotNil(t, rec.UpdatedCostPerUnit)
	require.InDelta(t, 100.0, *rec.UpdatedCostPerUnit, 1e-9)
}

func TestReconcileManualCostSurvivesZeroQuantity(t *testing.T) {
	rec, err := Reconcile(Entry{
		Material:     "Brahmi",
		Quantity:     0,
		QuantityUnit: units.UnitKg,
		CostPerUnit:  Override{Mode: FieldManual, Value: 77.5},
	}, nil, time.Now())
	require.NoError(t, err)

	require.NotNil(t, rec.UpdatedCostPerUnit)
	require.Equal(t, 77.5, *rec.UpdatedCostPerUnit)
}

func TestReconcileValidation(t *testing.T) {
	_, err := Reconcile(Entry{QuantityUnit: units.UnitKg}, nil, time.Now())
	require.ErrorIs(t, err, ErrMaterialRequired)

	_, err = Reconcile(Entry{Material: "x", QuantityUnit: "bogus"}, nil, time.Now())
	require.ErrorIs(t, err, ErrInvalidUnit)

	_, err = Reconcile(Entry{Material: "x", QuantityUnit: units.UnitKg, Quantity: -1}, nil, time.Now())
	require.ErrorIs(t, err, ErrNegativeQuantity)
}
