package serving

import (
	"math"
	"strconv"
)

type fraction struct {
	value float64
	glyph string
}

var fractions = []fraction{
	{0, ""},
	{0.25, "¼"},
	{0.33, "⅓"},
	{0.5, "½"},
	{0.67, "⅔"},
	{0.75, "¾"},
	{1, ""},
}

// carryThreshold is the fractional part from which a serving rounds up to
// the next whole number.
const carryThreshold = 0.95

// Amount is a portion expressed as a snapped decimal and its display text.
type Amount struct {
	Value float64
	Text  string
}

// ForRatio converts a calorie ratio into a human readable serving, such as
// "1½" for 1.48. Non-positive or non-finite ratios yield the zero Amount.
func ForRatio(ratio float64) Amount {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return Amount{}
	}

	whole := math.Floor(ratio)
	f := snap(ratio - whole)
	if f.value == 1 {
		whole++
		f = fractions[0]
	}

	value := math.Round((whole+f.value)*100) / 100
	switch {
	case whole == 0 && f.value == 0:
		return Amount{}
	case whole == 0:
		return Amount{Value: value, Text: f.glyph}
	default:
		return Amount{Value: value, Text: strconv.Itoa(int(whole)) + f.glyph}
	}
}

// Size returns only the display text of ForRatio.
func Size(ratio float64) string {
	return ForRatio(ratio).Text
}

func snap(decimal float64) fraction {
	if decimal >= carryThreshold {
		return fractions[len(fractions)-1]
	}
	closest := fractions[0]
	for _, f := range fractions[1:] {
		if math.Abs(f.value-decimal) < math.Abs(closest.value-decimal) {
			closest = f
		}
	}
	return closest
}
