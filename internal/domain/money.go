package domain

import "github.com/shopspring/decimal"

// MinorUnitExp is the decimal exponent of the smallest currency unit.
const MinorUnitExp = -2

// FormatAmount renders an amount in minor units as a fixed two-place string.
func FormatAmount(minor int64) string {
	return decimal.New(minor, MinorUnitExp).StringFixed(2)
}
