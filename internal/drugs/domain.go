// Package drugs keeps a flat log of drug purchases. Unlike the
// material ledger there is no stock or cost projection: every record
// stands alone.
package drugs

import (
	"errors"
	"time"

	"github.com/herbstock/herbstock/internal/units"
)

// ExtraField is one free-form name/value pair attached to a record.
type ExtraField struct {
	FieldName  string `json:"fieldName"`
	FieldValue string `json:"fieldValue"`
}

// DrugRecord is one drug purchase entry.
type DrugRecord struct {
	ID           string       `json:"id"`
	UserID       int64        `json:"-"`
	DrugName     string       `json:"drugName"`
	Quantity     float64      `json:"quantity"`
	QuantityUnit units.Unit   `json:"quantityUnit,omitempty"`
	Price        float64      `json:"price"`
	PricePerUnit float64      `json:"pricePerUnit"`
	Preparation  string       `json:"preparation,omitempty"`
	ExtraFields  []ExtraField `json:"anotherFields,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

var (
	// ErrDrugNameRequired indicates a missing drug name.
	ErrDrugNameRequired = errors.New("drugs: drug name required")
	// ErrRecordNotFound indicates a missing drug record.
	ErrRecordNotFound = errors.New("drugs: record not found")
)
