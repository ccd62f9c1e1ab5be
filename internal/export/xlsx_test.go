package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/pricing"
	"github.com/herbstock/herbstock/internal/units"
)

func costPtr(v float64) *float64 { return &v }

func TestMaterialsWorkbook(t *testing.T) {
	buf, err := MaterialsWorkbook([]ledger.PurchaseRecord{
		{
			Material:           "Ashwagandha",
			Dealer:             "Herbal Traders",
			Stock:              1.5,
			QuantityUnit:       units.UnitKg,
			UpdatedCostPerUnit: costPtr(523.4),
			MinQuantity:        2,
			Timestamp:          time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			Material:     "Brahmi",
			Stock:        500,
			QuantityUnit: units.UnitGram,
			MinQuantity:  100,
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	require.Equal(t, "Ashwagandha", name)

	cost, err := f.GetCellValue(sheet, "E2")
	require.NoError(t, err)
	require.Equal(t, "523.40", cost)

	// Ashwagandha is below its threshold, Brahmi is not.
	low, err := f.GetCellValue(sheet, "G2")
	require.NoError(t, err)
	require.Equal(t, "yes", low)
	low, err = f.GetCellValue(sheet, "G3")
	require.NoError(t, err)
	require.Equal(t, "", low)
}

func TestPriceWorkbook(t *testing.T) {
	rec := pricing.ProductPriceRecord{
		Name: "Hair Oil",
		MaterialsUsed: []pricing.MaterialUsed{
			{MaterialName: "Ashwagandha", Quantity: 500, Unit: units.UnitGram, CostPerUnit: 0.4, TotalCost: 200},
		},
		BottleInfo: pricing.BottleInfo{NumBottles: 10, CostPerBottle: 5, TotalBottleCost: 50},
		Calculations: pricing.Calculations{
			BaseCost:          250,
			Margin1:           282.5,
			Margin2:           63.9,
			TotalSellingPrice: 596.4,
			GrossPerBottle:    59.64,
		},
	}

	buf, err := PriceWorkbook(rec)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	require.Equal(t, "Ashwagandha", name)
}
