package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Cents is a monetary amount in integer minor units. All aggregation
// arithmetic runs on Cents; floating point only appears at the JSON
// boundary, so the running-balance fold never accumulates drift.
type Cents int64

// CentsFromFloat converts a decimal amount (e.g. 12.34) to cents with
// half-up rounding.
func CentsFromFloat(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Float64 returns the decimal representation of the amount.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

// MarshalJSON renders the amount as a plain decimal number (1234 cents ->
// 12.34), matching what API clients expect for money fields.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.Float64(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a decimal number and converts it to cents with
// half-up rounding.
func (c *Cents) UnmarshalJSON(data []byte) error {
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	*c = CentsFromFloat(amount)
	return nil
}
