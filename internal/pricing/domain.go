// Package pricing computes finished-product selling prices from a bill
// of materials and keeps the saved calculations as immutable records.
package pricing

import (
	"errors"
	"time"

	"github.com/herbstock/herbstock/internal/units"
)

// Row is one line of the bill of materials. Exactly one of MaterialID
// or BottleID is set: ingredient rows draw their cost per unit from the
// material ledger, bottle rows from the fixed bottle catalog.
type Row struct {
	MaterialID string
	Material   string
	BottleID   string
	Quantity   float64
	Unit       units.Unit
}

// Ingredient reports whether the row references a ledger material.
func (r Row) Ingredient() bool { return r.MaterialID != "" || r.Material != "" }

// BottleInfo describes the packaging for one calculation.
type BottleInfo struct {
	NumBottles      int     `json:"numBottles"`
	CostPerBottle   float64 `json:"costPerBottle"`
	TotalBottleCost float64 `json:"totalBottleCost"`
}

// MaterialUsed is a frozen point-in-time copy of one priced row. Later
// changes to the underlying material's cost never touch it.
type MaterialUsed struct {
	MaterialID   string     `json:"materialId,omitempty"`
	MaterialName string     `json:"materialName,omitempty"`
	BottleID     string     `json:"bottleId,omitempty"`
	Quantity     float64    `json:"quantity"`
	Unit         units.Unit `json:"unit,omitempty"`
	CostPerUnit  float64    `json:"costPerUnit"`
	TotalCost    float64    `json:"totalCost"`
}

// Calculations is the priced outcome of one bill of materials.
type Calculations struct {
	BaseCost          float64 `json:"baseCost"`
	Margin1           float64 `json:"margin1"`
	Margin2           float64 `json:"margin2"`
	TotalSellingPrice float64 `json:"totalSellingPrice"`
	GrossPerBottle    float64 `json:"grossPerBottle"`
}

// ProductPriceRecord is one saved pricing calculation.
type ProductPriceRecord struct {
	ID            string         `json:"id"`
	UserID        int64          `json:"-"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	MaterialsUsed []MaterialUsed `json:"materialsUsed"`
	BottleInfo    BottleInfo     `json:"bottleInfo"`
	Calculations  Calculations   `json:"calculations"`
	Timestamp     time.Time      `json:"timestamp"`
}

var (
	// ErrProductNameRequired indicates a missing product name.
	ErrProductNameRequired = errors.New("pricing: product name required")
	// ErrRowUnselected indicates a row with neither material nor bottle.
	ErrRowUnselected = errors.New("pricing: every row needs a material or bottle selection")
	// ErrInvalidBottleCount indicates numBottles <= 0.
	ErrInvalidBottleCount = errors.New("pricing: number of bottles must be greater than zero")
	// ErrUnknownBottle indicates a bottle id outside the catalog.
	ErrUnknownBottle = errors.New("pricing: unknown bottle")
	// ErrUnknownMaterial indicates an ingredient row whose material has
	// no ledger snapshot.
	ErrUnknownMaterial = errors.New("pricing: material has no purchase history")
	// ErrInsufficientStock blocks a save whose pre-check failed.
	ErrInsufficientStock = errors.New("pricing: insufficient stock")
	// ErrRecordNotFound indicates a missing product price record.
	ErrRecordNotFound = errors.New("pricing: product price record not found")
)

// StockError wraps the per-row insufficiency messages of a failed
// pre-check so handlers can surface them verbatim.
type StockError struct {
	Problems []string
}

func (e *StockError) Error() string { return ErrInsufficientStock.Error() }

// Unwrap lets errors.Is match ErrInsufficientStock.
func (e *StockError) Unwrap() error { return ErrInsufficientStock }
