// Package ledger maintains the raw-material purchase ledger. The
// chronologically latest purchase row per material doubles as the
// current inventory snapshot; there is no separate material entity.
package ledger

import (
	"errors"
	"time"

	"github.com/herbstock/herbstock/internal/units"
)

// PurchaseRecord is one purchase or restock event for a material.
// Stock and UpdatedCostPerUnit describe the cumulative state after
// this purchase, expressed in QuantityUnit.
type PurchaseRecord struct {
	ID             string     `json:"id"`
	UserID         int64      `json:"-"`
	Material       string     `json:"material"`
	Dealer         string     `json:"dealer,omitempty"`
	GSTNumber      string     `json:"gstNumber,omitempty"`
	Description    string     `json:"description,omitempty"`
	Quantity       float64    `json:"quantity"`
	QuantityUnit   units.Unit `json:"quantityUnit"`
	PricePerUnit   float64    `json:"pricePerUnit"`
	Price          float64    `json:"price"`
	GST            float64    `json:"gst"`
	Hamali         float64    `json:"hamali"`
	Transportation float64    `json:"transportation"`
	MinQuantity    float64    `json:"minQuantity"`
	MinQuantityUnit units.Unit `json:"minQuantityUnit"`
	Stock          float64    `json:"stock"`
	// UpdatedCostPerUnit is nil when it cannot be derived (zero
	// quantity purchase with no manual value).
	UpdatedCostPerUnit *float64  `json:"updatedCostPerUnit,omitempty"`
	Categories         []string  `json:"categories,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	BillPhotoURL       string    `json:"billPhotoUrl,omitempty"`
}

// LowStock reports whether the record's running stock has fallen below
// its reorder threshold. Units are compared as stored; min quantity is
// assumed to be kept in a comparable unit.
func (r PurchaseRecord) LowStock() bool {
	return r.Stock < r.MinQuantity
}

// FieldMode tags a derived entry field as auto-computed or manually set.
type FieldMode string

const (
	// FieldAuto means the reconciler computes the value.
	FieldAuto FieldMode = "auto"
	// FieldManual means the user supplied the value and the
	// reconciler must not overwrite it.
	FieldManual FieldMode = "manual"
)

// Override carries one derived field of the entry form. Each of the
// three derived fields (price, cost per unit, stock) locks
// independently: editing one does not stop the others from
// auto-computing.
type Override struct {
	Mode  FieldMode `json:"mode"`
	Value float64   `json:"value"`
}

// Manual reports whether the user pinned this field.
func (o Override) Manual() bool { return o.Mode == FieldManual }

// Entry is a purchase form submission before reconciliation.
type Entry struct {
	Material        string
	Dealer          string
	GSTNumber       string
	Description     string
	Quantity        float64
	QuantityUnit    units.Unit
	PricePerUnit    float64
	GST             float64
	Hamali          float64
	Transportation  float64
	MinQuantity     float64
	MinQuantityUnit units.Unit
	Categories      []string
	BillPhotoURL    string

	Price       Override
	CostPerUnit Override
	Stock       Override
}

var (
	// ErrMaterialRequired indicates a missing material name.
	ErrMaterialRequired = errors.New("ledger: material name required")
	// ErrInvalidUnit indicates an unknown quantity unit.
	ErrInvalidUnit = errors.New("ledger: unknown quantity unit")
	// ErrNegativeQuantity indicates a negative purchase quantity.
	ErrNegativeQuantity = errors.New("ledger: quantity must not be negative")
	// ErrRecordNotFound indicates a missing purchase record.
	ErrRecordNotFound = errors.New("ledger: purchase record not found")
)
