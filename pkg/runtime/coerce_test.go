package runtime

import (
	"math"
	"testing"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		input       string
		expected    float64
		description string
	}{
		{"", 0, "empty string is zero"},
		{"0", 0, "zero"},
		{"42", 42, "integer"},
		{"-7", -7, "negative integer"},
		{"3.14", 3.14, "float"},
		{"2.5e3", 2500, "scientific notation"},
		{"  10  ", 10, "surrounding whitespace"},
	}

	for _, test := range tests {
		got := ToNumber(test.input)
		if got != test.expected {
			t.Errorf("ToNumber(%q) (%s): expected %v, got %v", test.input, test.description, test.expected, got)
		}
	}
}

func TestToNumberNotNumeric(t *testing.T) {
	for _, input := range []string{"abc", "12abc", "one", "--3", "%"} {
		if got := ToNumber(input); !math.IsNaN(got) {
			t.Errorf("ToNumber(%q): expected NaN, got %v", input, got)
		}
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{1234567, "1234567"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, test := range tests {
		if got := NumberToString(test.input); got != test.expected {
			t.Errorf("NumberToString(%v): expected %q, got %q", test.input, test.expected, got)
		}
	}
}

// Integral values must round-trip through string conversion textually
// unchanged.
func TestIntegralRoundTrip(t *testing.T) {
	for _, text := range []string{"0", "1", "-1", "42", "100000", "-99999"} {
		n := ToNumber(text)
		if got := NumberToString(n); got != text {
			t.Errorf("round trip %q: got %q", text, got)
		}
	}
}

func TestToInteger(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{3.7, 3},
		{-3.7, -3},
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}

	for _, test := range tests {
		if got := ToInteger(test.input); got != test.expected {
			t.Errorf("ToInteger(%v): expected %v, got %v", test.input, test.expected, got)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		value       Value
		expected    bool
		description string
	}{
		{NewNumber(0), false, "zero"},
		{NewNumber(math.NaN()), false, "NaN"},
		{NewNumber(1), true, "nonzero number"},
		{NewNumber(-0.5), true, "negative number"},
		{NewString(""), false, "empty string"},
		{NewString("x"), true, "nonempty string"},
		{NewBoolean(false), false, "false"},
		{NewBoolean(true), true, "true"},
		{Undefined(), false, "undefined"},
		{NewObjectValue(0), true, "object reference"},
	}

	for _, test := range tests {
		if got := test.value.Truthy(); got != test.expected {
			t.Errorf("Truthy (%s): expected %v, got %v", test.description, test.expected, got)
		}
	}
}

func TestValueToString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{NewNumber(42), "42"},
		{NewBoolean(true), "true"},
		{NewBoolean(false), "false"},
		{NewString("hi"), "hi"},
		{Undefined(), "undefined"},
	}

	for _, test := range tests {
		if got := test.value.ToString(); got != test.expected {
			t.Errorf("ToString(%v): expected %q, got %q", test.value, test.expected, got)
		}
	}
}
