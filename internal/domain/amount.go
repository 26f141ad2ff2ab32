package domain

import (
	"fmt"
	"strconv"
)

// Amount is a token amount in the token's smallest unit.
// Fixed-width unsigned; all arithmetic goes through the checked helpers.
type Amount uint64

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount(v), nil
}

// String returns the decimal representation.
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// CheckedAdd returns a+b or an error on overflow.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("amount overflow: %s + %s", a, b)
	}
	return sum, nil
}

// CheckedMul returns a*b or an error on overflow.
func (a Amount) CheckedMul(b Amount) (Amount, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	prod := a * b
	if prod/a != b {
		return 0, fmt.Errorf("amount overflow: %s * %s", a, b)
	}
	return prod, nil
}
