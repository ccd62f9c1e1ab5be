// Package export renders ledger snapshots and saved price records as
// xlsx workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/pricing"
)

var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// MaterialsWorkbook renders the current latest-per-material snapshot,
// one row per material sorted by name.
func MaterialsWorkbook(materials []ledger.PurchaseRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"material",
		"dealer",
		"stock",
		"unit",
		"cost_per_unit",
		"min_quantity",
		"low_stock",
		"last_purchase",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, rec := range materials {
		cost := ""
		if rec.UpdatedCostPerUnit != nil {
			cost = money(*rec.UpdatedCostPerUnit)
		}
		lowStock := ""
		if rec.LowStock() {
			lowStock = "yes"
		}
		cells := []interface{}{
			rec.Material,
			rec.Dealer,
			rec.Stock,
			string(rec.QuantityUnit),
			cost,
			rec.MinQuantity,
			lowStock,
			rec.Timestamp.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return &buf, nil
}

// PriceWorkbook renders one saved product price record: the frozen
// bill of materials followed by the calculation summary.
func PriceWorkbook(rec pricing.ProductPriceRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"item", "quantity", "unit", "cost_per_unit", "total_cost"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, used := range rec.MaterialsUsed {
		name := used.MaterialName
		if name == "" {
			name = used.BottleID
		}
		cells := []interface{}{
			name,
			used.Quantity,
			string(used.Unit),
			money(used.CostPerUnit),
			money(used.TotalCost),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	summary := [][]interface{}{
		{"product", rec.Name},
		{"bottles", rec.BottleInfo.NumBottles},
		{"bottle cost", money(rec.BottleInfo.TotalBottleCost)},
		{"base cost", money(rec.Calculations.BaseCost)},
		{"margin 1 (113%)", money(rec.Calculations.Margin1)},
		{"margin 2 (12%)", money(rec.Calculations.Margin2)},
		{"total selling price", money(rec.Calculations.TotalSellingPrice)},
		{"gross per bottle", money(rec.Calculations.GrossPerBottle)},
	}
	row++
	for _, cells := range summary {
		cells := cells
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, fmt.Errorf("write summary row %d: %w", row, err)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return &buf, nil
}
