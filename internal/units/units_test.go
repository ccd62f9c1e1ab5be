package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertMassVolume(t *testing.T) {
	require.InDelta(t, 2500.0, Convert(2.5, UnitKg, UnitGram), 1e-9)
	require.InDelta(t, 0.5, Convert(500, UnitGram, UnitKg), 1e-9)
	require.InDelta(t, 1500.0, Convert(1.5, UnitLiter, UnitMl), 1e-9)
	require.InDelta(t, 0.25, Convert(250, UnitMl, UnitLiter), 1e-9)
}

func TestConvertRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 0.001, 1, 3.1415, 987654.321} {
		require.InDelta(t, x, Convert(Convert(x, UnitKg, UnitGram), UnitGram, UnitKg), 1e-9)
		require.InDelta(t, x, Convert(Convert(x, UnitMl, UnitLiter), UnitLiter, UnitMl), 1e-9)
	}
}

func TestConvertIdentityAndPassThrough(t *testing.T) {
	require.Equal(t, 42.0, Convert(42, UnitKg, UnitKg))
	// Count-like units never convert, even across families.
	require.Equal(t, 42.0, Convert(42, UnitMeter, UnitCount))
	require.Equal(t, 42.0, Convert(42, UnitKg, UnitMl))
	require.Equal(t, 42.0, Convert(42, UnitCount, UnitGram))
}

func TestConvertCostInverseFactor(t *testing.T) {
	// 400 per kg is 0.4 per gram.
	require.InDelta(t, 0.4, ConvertCost(400, UnitKg, UnitGram), 1e-9)
	require.InDelta(t, 400.0, ConvertCost(0.4, UnitGram, UnitKg), 1e-9)
	require.Equal(t, 7.0, ConvertCost(7, UnitMeter, UnitCount))
}

func TestComparable(t *testing.T) {
	require.True(t, Comparable(UnitKg, UnitGram))
	require.True(t, Comparable(UnitMl, UnitLiter))
	require.True(t, Comparable(UnitCount, UnitCount))
	require.False(t, Comparable(UnitKg, UnitMl))
	require.False(t, Comparable(UnitMeter, UnitCount))
}

func TestToGrams(t *testing.T) {
	require.InDelta(t, 600.0, ToGrams(0.6, UnitKg), 1e-9)
	require.InDelta(t, 500.0, ToGrams(500, UnitGram), 1e-9)
	require.InDelta(t, 12.0, ToGrams(12, UnitCount), 1e-9)
}
