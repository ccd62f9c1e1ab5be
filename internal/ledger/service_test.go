package ledger

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/units"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]PurchaseRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]PurchaseRecord)}
}

func (r *memoryRepo) Insert(_ context.Context, rec PurchaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	return nil
}

func (r *memoryRepo) Update(_ context.Context, rec PurchaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return ErrRecordNotFound
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *memoryRepo) UpdateStock(_ context.Context, userID int64, id string, stock float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return ErrRecordNotFound
	}
	rec.Stock = stock
	r.records[id] = rec
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, userID int64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memoryRepo) Get(_ context.Context, userID int64, id string) (PurchaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return PurchaseRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryRepo) ListAll(_ context.Context, userID int64) ([]PurchaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PurchaseRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *memoryRepo) LatestByMaterial(_ context.Context, userID int64, material string) (PurchaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest PurchaseRecord
	found := false
	for _, rec := range r.records {
		if rec.UserID != userID || rec.Material != material {
			continue
		}
		if !found || rec.Timestamp.After(latest.Timestamp) {
			latest = rec
			found = true
		}
	}
	if !found {
		return PurchaseRecord{}, ErrRecordNotFound
	}
	return latest, nil
}

func (r *memoryRepo) HistoryByMaterial(ctx context.Context, userID int64, material string) ([]PurchaseRecord, error) {
	all, _ := r.ListAll(ctx, userID)
	return History(all, material), nil
}

const testUser int64 = 7

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, nil, nil, nil)
}

func TestRecordPurchaseChainsStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first, isNew, err := svc.RecordPurchase(ctx, testUser, Entry{
		Material:     "Ashwagandha",
		Quantity:     2,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 450,
	})
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, 2.0, first.Stock)

	second, isNew, err := svc.RecordPurchase(ctx, testUser, Entry{
		Material:     "Ashwagandha",
		Quantity:     500,
		QuantityUnit: units.UnitGram,
		PricePerUnit: 0.5,
	})
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, 2500.0, second.Stock)
	require.NotEqual(t, first.ID, second.ID)
}

func TestEditPurchaseKeepsStockUnlessPinned(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	rec, _, err := svc.RecordPurchase(ctx, testUser, Entry{
		Material:     "Brahmi",
		Quantity:     10,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 100,
	})
	require.NoError(t, err)

	edited, err := svc.EditPurchase(ctx, testUser, rec.ID, Entry{
		Material:     "Brahmi",
		Quantity:     10,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 120,
	})
	require.NoError(t, err)
	require.Equal(t, rec.Stock, edited.Stock)
	require.Equal(t, 1200.0, edited.Price)
	require.Equal(t, rec.Timestamp, edited.Timestamp)

	pinned, err := svc.EditPurchase(ctx, testUser, rec.ID, Entry{
		Material:     "Brahmi",
		Quantity:     10,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 120,
		Stock:        Override{Mode: FieldManual, Value: 3},
	})
	require.NoError(t, err)
	require.Equal(t, 3.0, pinned.Stock)
}

func TestDeductConvertsUnitsAndClamps(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	rec, _, err := svc.RecordPurchase(ctx, testUser, Entry{
		Material:     "Ashwagandha",
		Quantity:     1,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 450,
	})
	require.NoError(t, err)

	err = svc.Deduct(ctx, testUser, []DeductionRow{
		{Material: "Ashwagandha", Quantity: 400, Unit: units.UnitGram},
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, testUser, rec.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.6, got.Stock, 1e-9)

	// A deduction larger than available stock clamps at zero.
	err = svc.Deduct(ctx, testUser, []DeductionRow{
		{Material: "Ashwagandha", Quantity: 5, Unit: units.UnitKg},
	})
	require.NoError(t, err)
	got, err = repo.Get(ctx, testUser, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Stock)
}

func TestDeductSkipsUnknownMaterials(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	rec, _, err := svc.RecordPurchase(ctx, testUser, Entry{
		Material:     "Brahmi",
		Quantity:     2,
		QuantityUnit: units.UnitKg,
		PricePerUnit: 100,
	})
	require.NoError(t, err)

	err = svc.Deduct(ctx, testUser, []DeductionRow{
		{Material: "Does Not Exist", Quantity: 1, Unit: units.UnitKg},
		{Material: "Brahmi", Quantity: 1, Unit: units.UnitKg},
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, testUser, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 1.0, got.Stock)
}

func TestCheckStockNormalizesKgToGrams(t *testing.T) {
	latest := map[string]PurchaseRecord{
		"Ashwagandha": {Material: "Ashwagandha", Stock: 0.3, QuantityUnit: units.UnitKg},
	}

	problems := CheckStock([]DeductionRow{
		{Material: "Ashwagandha", Quantity: 500, Unit: units.UnitGram},
	}, latest)
	require.Len(t, problems, 1)
	require.Equal(t,
		"insufficient stock for Ashwagandha: required 500.00 gram, available 0.30 kg",
		problems[0])

	problems = CheckStock([]DeductionRow{
		{Material: "Ashwagandha", Quantity: 250, Unit: units.UnitGram},
	}, latest)
	require.Empty(t, problems)
}

func TestCheckStockUnknownMaterial(t *testing.T) {
	problems := CheckStock([]DeductionRow{
		{Material: "Ghost", Quantity: 1, Unit: units.UnitKg},
	}, map[string]PurchaseRecord{})
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "Ghost")
}

func TestMaterialsSortedSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for i, name := range []string{"Tulsi", "Ashwagandha", "Brahmi"} {
		rec := PurchaseRecord{
			ID:           name,
			UserID:       testUser,
			Material:     name,
			Stock:        float64(i),
			QuantityUnit: units.UnitKg,
			Timestamp:    time.Now().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Insert(ctx, rec))
	}

	materials, err := svc.Materials(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, materials, 3)
	require.Equal(t, "Ashwagandha", materials[0].Material)
	require.Equal(t, "Brahmi", materials[1].Material)
	require.Equal(t, "Tulsi", materials[2].Material)
}
