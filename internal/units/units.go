// Package units implements quantity and cost conversion between the
// measurement units used by the purchase ledger.
package units

// Unit enumerates supported measurement units.
type Unit string

const (
	// UnitKg is kilograms.
	UnitKg Unit = "kg"
	// UnitGram is grams.
	UnitGram Unit = "gram"
	// UnitLiter is liters.
	UnitLiter Unit = "lts"
	// UnitMl is milliliters.
	UnitMl Unit = "ml"
	// UnitMeter is meters, count-like for conversion purposes.
	UnitMeter Unit = "mt"
	// UnitCount is a plain piece count.
	UnitCount Unit = "no"
)

// massVolumeFactor is the scale between kg/gram and lts/ml.
const massVolumeFactor = 1000

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGram, UnitLiter, UnitMl, UnitMeter, UnitCount:
		return true
	}
	return false
}

// family groups units that convert into each other. Meter and count
// are their own families and never convert.
func family(u Unit) string {
	switch u {
	case UnitKg, UnitGram:
		return "mass"
	case UnitLiter, UnitMl:
		return "volume"
	}
	return string(u)
}

// Comparable reports whether quantities in a and b can be compared
// after conversion.
func Comparable(a, b Unit) bool {
	return family(a) == family(b)
}

// Convert converts a quantity between units. Only kg<->gram and
// lts<->ml convert; any other pair, including mt and no, passes the
// value through unchanged. Converting a unit to itself is identity.
func Convert(value float64, from, to Unit) float64 {
	if from == to || !Comparable(from, to) {
		return value
	}
	switch {
	case from == UnitKg && to == UnitGram,
		from == UnitLiter && to == UnitMl:
		return value * massVolumeFactor
	case from == UnitGram && to == UnitKg,
		from == UnitMl && to == UnitLiter:
		return value / massVolumeFactor
	}
	return value
}

// ConvertCost converts a per-unit cost between units. The factor is
// the inverse of Convert: a price per kg becomes a thousandth per gram.
func ConvertCost(cost float64, from, to Unit) float64 {
	if from == to || !Comparable(from, to) {
		return cost
	}
	switch {
	case from == UnitKg && to == UnitGram,
		from == UnitLiter && to == UnitMl:
		return cost / massVolumeFactor
	case from == UnitGram && to == UnitKg,
		from == UnitMl && to == UnitLiter:
		return cost * massVolumeFactor
	}
	return cost
}

// ToGrams normalizes a mass quantity to grams for stock comparisons.
// Kilograms scale by 1000, grams pass through, and every other unit is
// returned as-is so that same-unit comparisons still work.
func ToGrams(value float64, unit Unit) float64 {
	if unit == UnitKg {
		return value * massVolumeFactor
	}
	return value
}
