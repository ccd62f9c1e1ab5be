package ledger

import (
	"github.com/herbstock/herbstock/internal/units"
)

// overridePayload carries a derived field submitted by the entry form.
// Mode defaults to auto when omitted.
type overridePayload struct {
	Mode  string  `json:"mode" validate:"omitempty,oneof=auto manual"`
	Value float64 `json:"value"`
}

func (p overridePayload) toOverride() Override {
	mode := FieldAuto
	if p.Mode == string(FieldManual) {
		mode = FieldManual
	}
	return Override{Mode: mode, Value: p.Value}
}

type purchaseRequest struct {
	Material        string   `json:"material" validate:"required"`
	Dealer          string   `json:"dealer"`
	GSTNumber       string   `json:"gstNumber"`
	Description     string   `json:"description"`
	Quantity        float64  `json:"quantity" validate:"gte=0"`
	QuantityUnit    string   `json:"quantityUnit" validate:"required"`
	PricePerUnit    float64  `json:"pricePerUnit" validate:"gte=0"`
	GST             float64  `json:"gst" validate:"gte=0"`
	Hamali          float64  `json:"hamali" validate:"gte=0"`
	Transportation  float64  `json:"transportation" validate:"gte=0"`
	MinQuantity     float64  `json:"minQuantity" validate:"gte=0"`
	MinQuantityUnit string   `json:"minQuantityUnit"`
	Categories      []string `json:"categories"`
	BillPhotoURL    string   `json:"billPhotoUrl"`

	Price       overridePayload `json:"price"`
	CostPerUnit overridePayload `json:"costPerUnit"`
	Stock       overridePayload `json:"stock"`
}

func (p purchaseRequest) toEntry() Entry {
	minUnit := units.Unit(p.MinQuantityUnit)
	if p.MinQuantityUnit == "" {
		minUnit = units.Unit(p.QuantityUnit)
	}
	return Entry{
		Material:        p.Material,
		Dealer:          p.Dealer,
		GSTNumber:       p.GSTNumber,
		Description:     p.Description,
		Quantity:        p.Quantity,
		QuantityUnit:    units.Unit(p.QuantityUnit),
		PricePerUnit:    p.PricePerUnit,
		GST:             p.GST,
		Hamali:          p.Hamali,
		Transportation:  p.Transportation,
		MinQuantity:     p.MinQuantity,
		MinQuantityUnit: minUnit,
		Categories:      p.Categories,
		BillPhotoURL:    p.BillPhotoURL,
		Price:           p.Price.toOverride(),
		CostPerUnit:     p.CostPerUnit.toOverride(),
		Stock:           p.Stock.toOverride(),
	}
}

type purchaseResponse struct {
	Record      PurchaseRecord `json:"record"`
	NewMaterial bool           `json:"newMaterial"`
}

type stockCheckRequest struct {
	Rows []deductionRowPayload `json:"rows" validate:"required,min=1,dive"`
}

type deductionRowPayload struct {
	MaterialID string  `json:"materialId"`
	Material   string  `json:"material" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
	Unit       string  `json:"unit" validate:"required"`
}

func (p deductionRowPayload) toRow() DeductionRow {
	return DeductionRow{
		MaterialID: p.MaterialID,
		Material:   p.Material,
		Quantity:   p.Quantity,
		Unit:       units.Unit(p.Unit),
	}
}

type stockCheckResponse struct {
	Sufficient bool     `json:"sufficient"`
	Problems   []string `json:"problems,omitempty"`
}
