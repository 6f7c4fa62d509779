package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts are stored with 2 decimal places and at most 12 digits in total.
const (
	AmountPlaces        = 2
	AmountIntegerDigits = 10
)

var amountLimit = decimal.New(1, AmountIntegerDigits)

// AmountPrecisionProblem returns why d cannot be stored as an amount, or ""
// if it fits. The sign is not checked.
func AmountPrecisionProblem(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(AmountPlaces)) {
		return "has more than 2 decimal places"
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return "has more than 10 integer digits"
	}
	return ""
}

// Day drops the clock part of t and returns midnight UTC of the same
// calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
