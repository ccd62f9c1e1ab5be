package pricing

// Bottle is one entry of the fixed packaging catalog.
type Bottle struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// bottleCatalog is the fixed packaging price table. Bottle rows price
// against this table, never against the material ledger.
var bottleCatalog = []Bottle{
	{ID: "bottle_100ml", Name: "Small Bottle (100ml)", Cost: 5.00},
	{ID: "bottle_200ml", Name: "Medium Bottle (200ml)", Cost: 8.00},
	{ID: "bottle_500ml", Name: "Large Bottle (500ml)", Cost: 12.00},
	{ID: "bottle_glass_100ml", Name: "Glass Bottle (100ml)", Cost: 15.00},
	{ID: "bottle_glass_200ml", Name: "Glass Bottle (200ml)", Cost: 20.00},
	{ID: "bottle_plastic_250ml", Name: "Plastic Bottle (250ml)", Cost: 6.00},
	{ID: "bottle_dropper_30ml", Name: "Dropper Bottle (30ml)", Cost: 25.00},
}

// Bottles returns the catalog in display order.
func Bottles() []Bottle {
	out := make([]Bottle, len(bottleCatalog))
	copy(out, bottleCatalog)
	return out
}

// LookupBottle resolves a catalog entry by id.
func LookupBottle(id string) (Bottle, bool) {
	for _, b := range bottleCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return Bottle{}, false
}
