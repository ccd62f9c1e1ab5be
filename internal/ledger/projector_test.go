package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/units"
)

func tsRecord(material string, ts time.Time, stock float64) PurchaseRecord {
	return PurchaseRecord{
		ID:           material + ts.Format("150405"),
		Material:     material,
		Stock:        stock,
		QuantityUnit: units.UnitKg,
		Timestamp:    ts,
	}
}

func TestProjectPicksLatestPerMaterial(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []PurchaseRecord{
		tsRecord("Ashwagandha", base, 1),
		tsRecord("Brahmi", base.Add(time.Hour), 5),
		tsRecord("Ashwagandha", base.Add(2*time.Hour), 3),
	}

	latest := Project(records)
	require.Len(t, latest, 2)
	require.Equal(t, 3.0, latest["Ashwagandha"].Stock)
	require.Equal(t, 5.0, latest["Brahmi"].Stock)
}

func TestProjectEqualTimestampsLaterRowWins(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := tsRecord("Ashwagandha", ts, 1)
	first.ID = "a"
	second := tsRecord("Ashwagandha", ts, 2)
	second.ID = "b"

	latest := Project([]PurchaseRecord{first, second})
	require.Equal(t, "b", latest["Ashwagandha"].ID)
}

func TestHistoryExactMatchNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []PurchaseRecord{
		tsRecord("Tulsi", base, 1),
		tsRecord("Tulsi Leaves", base.Add(time.Hour), 9),
		tsRecord("Tulsi", base.Add(2*time.Hour), 4),
	}

	history := History(records, "Tulsi")
	require.Len(t, history, 2)
	require.Equal(t, 4.0, history[0].Stock)
	require.Equal(t, 1.0, history[1].Stock)
}

func TestLowStockMaterialsSortedByName(t *testing.T) {
	latest := map[string]PurchaseRecord{
		"Brahmi":      {Material: "Brahmi", Stock: 1, MinQuantity: 5},
		"Ashwagandha": {Material: "Ashwagandha", Stock: 2, MinQuantity: 10},
		"Tulsi":       {Material: "Tulsi", Stock: 50, MinQuantity: 5},
	}

	low := LowStockMaterials(latest)
	require.Len(t, low, 2)
	require.Equal(t, "Ashwagandha", low[0].Material)
	require.Equal(t, "Brahmi", low[1].Material)
}

func TestLowStockBoundaryIsExclusive(t *testing.T) {
	rec := PurchaseRecord{Stock: 5, MinQuantity: 5}
	require.False(t, rec.LowStock())
	rec.Stock = 4.999
	require.True(t, rec.LowStock())
}
