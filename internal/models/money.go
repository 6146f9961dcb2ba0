package models

import (
	"math"
	"strconv"
	"strings"
)

// ParseCents converts a decimal string amount in major currency units
// to minor units ("19.99" -> 1999). The multiply-and-round happens here,
// once, at the boundary; downstream code only ever sees integer cents.
// Returns a validation error for non-numeric input.
func ParseCents(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, NewValidationError("amount", "must not be empty")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, NewValidationError("amount", "must be a number")
	}
	// math.Round handles both positive and negative amounts correctly
	return int64(math.Round(f * 100)), nil
}

// MajorToCents converts a major-unit amount already parsed as a float
// ("19.99" from a JSON number) to minor units with the same rounding.
func MajorToCents(f float64) int64 {
	return int64(math.Round(f * 100))
}
