package apperr

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Batas kolom di schema.sql: NUMERIC(12,2) untuk uang, INTEGER untuk stok.
var maxMoney = decimal.New(1, 10)

const MaxCount = math.MaxInt32

// CheckMoney records why d does not fit a NUMERIC(12,2) column, if it doesn't.
func CheckMoney(ve *ValidationError, field string, d decimal.Decimal) bool {
	switch {
	case d.IsNegative():
		ve.Add(field, "must be >= 0")
	case !d.Equal(d.Truncate(2)):
		ve.Add(field, "must have at most 2 decimal places")
	case d.GreaterThanOrEqual(maxMoney):
		ve.Add(field, "must be less than "+maxMoney.String())
	default:
		return true
	}
	return false
}

// CheckCount caps n at what an INTEGER column holds.
func CheckCount(ve *ValidationError, field string, n int) bool {
	if n > MaxCount {
		ve.Add(field, fmt.Sprintf("must be at most %d", MaxCount))
		return false
	}
	return true
}
