package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SmartRound rounds v up to a step that grows with its magnitude, so the
// displayed local price never undercuts the converted value.
func SmartRound(v float64) int64 {
	step := roundingStep(v)
	return int64(math.Ceil(v/float64(step))) * step
}

func roundingStep(v float64) int64 {
	switch {
	case v < 1_000:
		return 10
	case v < 10_000:
		return 100
	case v < 100_000:
		return 1_000
	default:
		return 10_000
	}
}

// Convert applies rate to a USD amount. USD amounts pass through unrounded.
func Convert(usd, rate float64, currency string) float64 {
	if currency == BaseCurrency {
		return usd
	}
	return float64(SmartRound(usd * rate))
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders v with thousands separators and no decimals.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.0f", v)
}

// FormatPrice renders an amount followed by its currency code, e.g. "5,400 ARS".
func FormatPrice(v float64, currency string) string {
	return FormatAmount(v) + " " + currency
}

// FormatBalance renders a ledger balance with two decimals, e.g. "15.00".
func FormatBalance(v float64) string {
	return printer.Sprintf("%.2f", v)
}
