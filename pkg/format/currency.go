package format

import (
	"math"

	"github.com/Rhymond/go-money"
)

const currencyCode = "USD"

// Currency renders x as a grouped dollar amount rounded to cents.
// A nil value renders as zero.
func Currency(x *float64) string {
	if x == nil {
		return money.New(0, currencyCode).Display()
	}
	return money.New(toCents(*x), currencyCode).Display()
}

// Amount is Currency for values that are always present.
func Amount(x float64) string {
	return Currency(&x)
}

func toCents(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int64(math.Round(x * 100))
}
