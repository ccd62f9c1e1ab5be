package pricing

import "github.com/herbstock/herbstock/internal/units"

type rowPayload struct {
	MaterialID string  `json:"materialId"`
	Material   string  `json:"material"`
	BottleID   string  `json:"bottleId"`
	Quantity   float64 `json:"quantity" validate:"gte=0"`
	Unit       string  `json:"unit"`
}

func (p rowPayload) toRow() Row {
	return Row{
		MaterialID: p.MaterialID,
		Material:   p.Material,
		BottleID:   p.BottleID,
		Quantity:   p.Quantity,
		Unit:       units.Unit(p.Unit),
	}
}

type calculateRequest struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	Rows        []rowPayload `json:"rows" validate:"required,min=1,dive"`
	Bottle      struct {
		NumBottles    int     `json:"numBottles" validate:"gt=0"`
		CostPerBottle float64 `json:"costPerBottle" validate:"gte=0"`
	} `json:"bottle"`
}

func (p calculateRequest) toRows() []Row {
	rows := make([]Row, 0, len(p.Rows))
	for _, row := range p.Rows {
		rows = append(rows, row.toRow())
	}
	return rows
}

func (p calculateRequest) toBottle() BottleInfo {
	return BottleInfo{
		NumBottles:    p.Bottle.NumBottles,
		CostPerBottle: p.Bottle.CostPerBottle,
	}
}

type calculateResponse struct {
	Rows         []MaterialUsed `json:"rows"`
	Calculations Calculations   `json:"calculations"`
}

type stockFailureResponse struct {
	Detail   string   `json:"detail"`
	Problems []string `json:"problems"`
}
