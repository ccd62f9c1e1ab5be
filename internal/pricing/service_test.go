package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/units"
)

type memoryPriceRepo struct {
	records map[string]ProductPriceRecord
}

func newMemoryPriceRepo() *memoryPriceRepo {
	return &memoryPriceRepo{records: make(map[string]ProductPriceRecord)}
}

func (r *memoryPriceRepo) Insert(_ context.Context, rec ProductPriceRecord) error {
	r.records[rec.ID] = rec
	return nil
}

func (r *memoryPriceRepo) List(_ context.Context, userID int64) ([]ProductPriceRecord, error) {
	var out []ProductPriceRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryPriceRepo) Get(_ context.Context, userID int64, id string) (ProductPriceRecord, error) {
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return ProductPriceRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryPriceRepo) Delete(_ context.Context, userID int64, id string) error {
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// fakeLedger backs the pricer with a mutable latest snapshot so tests
// can observe deductions.
type fakeLedger struct {
	latest       map[string]ledger.PurchaseRecord
	checkResult  []string
	deductCalls  int
	deductedRows []ledger.DeductionRow
}

func (f *fakeLedger) LatestSnapshot(_ context.Context, _ int64) (map[string]ledger.PurchaseRecord, error) {
	return f.latest, nil
}

func (f *fakeLedger) CheckStock(_ context.Context, _ int64, rows []ledger.DeductionRow) ([]string, error) {
	return f.checkResult, nil
}

func (f *fakeLedger) Deduct(_ context.Context, _ int64, rows []ledger.DeductionRow) error {
	f.deductCalls++
	f.deductedRows = append(f.deductedRows, rows...)
	for _, row := range rows {
		rec := f.latest[row.Material]
		rec.Stock -= units.Convert(row.Quantity, row.Unit, rec.QuantityUnit)
		f.latest[row.Material] = rec
	}
	return nil
}

const testUser int64 = 3

func testBill() ([]Row, BottleInfo) {
	rows := []Row{
		{MaterialID: "m1", Material: "Ashwagandha", Quantity: 500, Unit: units.UnitGram},
	}
	return rows, BottleInfo{NumBottles: 10, CostPerBottle: 5}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{latest: map[string]ledger.PurchaseRecord{
		"Ashwagandha": {
			ID:                 "rec-1",
			Material:           "Ashwagandha",
			Stock:              2,
			QuantityUnit:       units.UnitKg,
			UpdatedCostPerUnit: costPtr(400),
		},
	}}
}

func TestCalculateAndSaveFreezesAndDeducts(t *testing.T) {
	repo := newMemoryPriceRepo()
	led := newFakeLedger()
	svc := NewService(repo, led, nil, nil, nil)
	ctx := context.Background()

	rows, bottle := testBill()
	rec, err := svc.CalculateAndSave(ctx, testUser, "Hair Oil", "batch 1", rows, bottle, "")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, 1, led.deductCalls)
	require.InDelta(t, 1.5, led.latest["Ashwagandha"].Stock, 1e-9)

	// 500 gram at 0.40/gram plus 10 bottles at 5.
	require.InDelta(t, 250.0, rec.Calculations.BaseCost, 1e-9)
	require.Equal(t, 50.0, rec.BottleInfo.TotalBottleCost)
	require.Len(t, rec.MaterialsUsed, 1)
	require.InDelta(t, 200.0, rec.MaterialsUsed[0].TotalCost, 1e-9)

	// The saved copy is frozen: a later cost change does not touch it.
	updated := led.latest["Ashwagandha"]
	updated.UpdatedCostPerUnit = costPtr(9999)
	led.latest["Ashwagandha"] = updated
	got, err := svc.Get(ctx, testUser, rec.ID)
	require.NoError(t, err)
	require.InDelta(t, 200.0, got.MaterialsUsed[0].TotalCost, 1e-9)
}

func TestCalculateAndSaveAbortsOnStockFailure(t *testing.T) {
	repo := newMemoryPriceRepo()
	led := newFakeLedger()
	led.checkResult = []string{"insufficient stock for Ashwagandha: required 5.00 kg, available 2.00 kg"}
	svc := NewService(repo, led, nil, nil, nil)

	rows, bottle := testBill()
	_, err := svc.CalculateAndSave(context.Background(), testUser, "Hair Oil", "", rows, bottle, "")
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Problems, 1)

	// All-or-nothing: nothing saved, nothing deducted.
	require.Empty(t, repo.records)
	require.Zero(t, led.deductCalls)
}

func TestDeleteDoesNotReverseDeduction(t *testing.T) {
	repo := newMemoryPriceRepo()
	led := newFakeLedger()
	svc := NewService(repo, led, nil, nil, nil)
	ctx := context.Background()

	rows, bottle := testBill()
	rec, err := svc.CalculateAndSave(ctx, testUser, "Hair Oil", "", rows, bottle, "")
	require.NoError(t, err)
	stockAfterSave := led.latest["Ashwagandha"].Stock

	require.NoError(t, svc.Delete(ctx, testUser, rec.ID))
	require.Equal(t, stockAfterSave, led.latest["Ashwagandha"].Stock)

	_, err = svc.Get(ctx, testUser, rec.ID)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCalculateHasNoSideEffect(t *testing.T) {
	led := newFakeLedger()
	svc := NewService(newMemoryPriceRepo(), led, nil, nil, nil)

	rows, bottle := testBill()
	result, err := svc.Calculate(context.Background(), testUser, "Hair Oil", rows, bottle)
	require.NoError(t, err)
	require.InDelta(t, 250.0, result.Calculations.BaseCost, 1e-9)
	require.Zero(t, led.deductCalls)
	require.Equal(t, 2.0, led.latest["Ashwagandha"].Stock)
}

func TestBottleRowsNeverDeduct(t *testing.T) {
	led := newFakeLedger()
	svc := NewService(newMemoryPriceRepo(), led, nil, nil, nil)

	rows := []Row{{BottleID: "bottle_100ml", Quantity: 10}}
	_, err := svc.CalculateAndSave(context.Background(), testUser, "Empty Bottles", "", rows, BottleInfo{NumBottles: 10}, "")
	require.NoError(t, err)
	require.Empty(t, led.deductedRows)
}
