// Package currency converts storefront prices between currencies using a
// static rate table.
//
// All rates are expressed relative to one base currency, so every
// conversion routes through the base implicitly. Amounts are never
// rounded here; rounding happens in Format, at display time.
package currency

import (
	"errors"
	"fmt"
)

// ErrUnknownCurrency is returned when a currency code has no rate-table
// entry. Conversion must fail loudly rather than default to zero.
var ErrUnknownCurrency = errors.New("unknown currency")

// Code is an ISO 4217 currency code (e.g. "USD", "RUB").
type Code string

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

// Info describes the currency resolved for a country along with its
// rate against the base currency.
type Info struct {
	Currency Code    `json:"currency"`
	Rate     float64 `json:"rate"`
}

// Convert converts an amount from one currency to another via the base
// currency: (amount / rate(from)) * rate(to).
//
// Returns ErrUnknownCurrency (wrapped with the offending code) when
// either side has no rate-table entry.
func Convert(amount float64, from, to Code) (float64, error) {
	fromRate, ok := rates[from]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for origin currency %q", ErrUnknownCurrency, from)
	}

	toRate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for destination currency %q", ErrUnknownCurrency, to)
	}

	return (amount / fromRate) * toRate, nil
}

// MustConvert is Convert for currencies known to be in the rate table.
// It panics on an unknown code and exists for static call sites
// (e.g. converting to the base currency itself).
func MustConvert(amount float64, from, to Code) float64 {
	v, err := Convert(amount, from, to)
	if err != nil {
		panic(fmt.Sprintf("currency.MustConvert(%v, %s, %s): %v", amount, from, to, err))
	}
	return v
}

// CountryCurrency resolves the preferred currency for an ISO 3166-1
// alpha-2 country code, falling back to backup on a miss. The returned
// rate is the value of one unit of the base currency in the resolved
// currency.
func CountryCurrency(country string, backup Code) Info {
	code, ok := countryToCurrency[country]
	if !ok {
		code = backup
	}

	return Info{Currency: code, Rate: MustConvert(1, BaseCurrency, code)}
}

// Known reports whether the code has a rate-table entry.
func Known(c Code) bool {
	_, ok := rates[c]
	return ok
}

// Codes returns every currency code present in the rate table.
func Codes() []Code {
	out := make([]Code, 0, len(rates))
	for c := range rates {
		out = append(out, c)
	}
	return out
}
