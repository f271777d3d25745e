package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Coercion rules shared by every operation that converts between the numeric,
// string, and boolean representations. Arithmetic, comparison, logical, and
// explicit cast operations all go through these; none carries private rules.

// ToNumber converts string text to a number: the empty string is zero, text
// fully parseable as a numeral is its parsed value, anything else is NaN.
func ToNumber(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// NumberToString formats a number as decimal text. NaN and the infinities
// format as the literal "NaN", "Infinity", and "-Infinity" tokens. Integral
// values print without a fractional part, so integral round-trips through
// ToNumber are textually exact.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToInteger truncates toward zero. Non-finite input maps to zero.
func ToInteger(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Trunc(f)
}

func truthyNumber(f float64) bool {
	return f != 0 && !math.IsNaN(f)
}

func nan() float64 {
	return math.NaN()
}
