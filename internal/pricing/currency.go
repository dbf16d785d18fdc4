package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// BaseCurrency is the currency every catalog price is quoted in.
const BaseCurrency = "USD"

// ErrUnsupportedCurrency is returned for currency codes outside the display set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currency describes a display currency. Label and Flag are presentational only.
type Currency struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Flag  string `json:"flag"`
}

var currencies = []Currency{
	{Code: "USD", Label: "🇺🇸 USD", Flag: "🇺🇸"},
	{Code: "EUR", Label: "🇪🇺 EUR", Flag: "🇪🇺"},
	{Code: "ARS", Label: "🇦🇷 ARS", Flag: "🇦🇷"},
	{Code: "CLP", Label: "🇨🇱 CLP", Flag: "🇨🇱"},
	{Code: "PEN", Label: "🇵🇪 PEN", Flag: "🇵🇪"},
	{Code: "COP", Label: "🇨🇴 COP", Flag: "🇨🇴"},
	{Code: "BRL", Label: "🇧🇷 BRL", Flag: "🇧🇷"},
	{Code: "MXN", Label: "🇲🇽 MXN", Flag: "🇲🇽"},
}

// Currencies returns the supported display currencies in menu order.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// LookupCurrency normalizes code and resolves it against the supported set.
func LookupCurrency(code string) (Currency, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == norm {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
}
