// Package money holds the rounding and display rules shared by the local
// calculator, the pricing service and the result renderer.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	Currency   = "₽"
	LitreUnit  = "л"
	GramUnit   = "г"
	PieceUnit  = "шт"
	moneyPlace = 2
)

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return RoundTo(v, moneyPlace)
}

// RoundTo rounds v to the given number of decimal places. NaN and the
// infinities are returned unchanged.
func RoundTo(v float64, places int32) float64 {
	if !Finite(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Fixed formats v with exactly places decimals. Non-finite values are
// written as "Infinity", "-Infinity" or "NaN".
func Fixed(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Format renders an amount as "1234.50 ₽".
func Format(v float64) string {
	return Fixed(v, moneyPlace) + " " + Currency
}

// Percent renders a percentage as "33.33%".
func Percent(v float64) string {
	return Fixed(v, moneyPlace) + "%"
}

// Litres renders a volume with the given precision, e.g. "20.0 л".
func Litres(v float64, places int32) string {
	return Fixed(v, places) + " " + LitreUnit
}

// Grams renders a mass as "100.0 г".
func Grams(v float64) string {
	return Fixed(v, 1) + " " + GramUnit
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
