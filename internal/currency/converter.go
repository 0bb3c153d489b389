package currency

import "github.com/shopspring/decimal"

// DefaultRielPerUSD is the fixed rate the registers are calibrated to. It is
// a build-time constant, not fetched per request.
const DefaultRielPerUSD = 4100

var hundred = decimal.NewFromInt(100)

// Converter derives USD mirror amounts from riel at a fixed rate. The rate is
// injected once at construction so tests can run with different rates.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter returns a Converter for the given riel-per-USD rate.
// Non-positive rates fall back to DefaultRielPerUSD.
func NewConverter(rielPerUSD float64) *Converter {
	if rielPerUSD <= 0 {
		rielPerUSD = DefaultRielPerUSD
	}
	return &Converter{rate: decimal.NewFromFloat(rielPerUSD)}
}

// Rate reports the riel-per-USD rate this converter was built with.
func (c *Converter) Rate() float64 {
	rate, _ := c.rate.Float64()
	return rate
}

// ToUSD converts a riel amount to USD, rounded half-up to two decimal places.
func (c *Converter) ToUSD(riel float64) float64 {
	usd, _ := decimal.NewFromFloat(riel).Div(c.rate).Round(2).Float64()
	return usd
}

// RoundToCash rounds a riel amount to the nearest 100 riel, the smallest note
// in circulation. Used only when quoting change due at the register; stored
// bill totals are never cash-rounded.
func (c *Converter) RoundToCash(riel float64) float64 {
	cash, _ := decimal.NewFromFloat(riel).Div(hundred).Round(0).Mul(hundred).Float64()
	return cash
}
