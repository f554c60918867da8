package currency

import (
	"fmt"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders an amount as a localized currency string, e.g.
// "$ 4.99" or "4,99 €". The first locale that parses to a usable tag
// wins. When the currency or locale is outside what the formatter
// supports, the result degrades to a fixed two-decimal form with the
// code appended ("4.99 USD") — formatting never fails.
func Format(amount float64, code Code, locales ...string) string {
	unit, err := xcurrency.ParseISO(string(code))
	if err != nil {
		return fallbackFormat(amount, code)
	}

	tag := resolveTag(locales)
	p := message.NewPrinter(tag)

	return p.Sprintf("%v", xcurrency.Symbol(unit.Amount(amount)))
}

func resolveTag(locales []string) language.Tag {
	for _, l := range locales {
		if tag := language.Make(l); tag != language.Und {
			return tag
		}
	}
	return language.English
}

func fallbackFormat(amount float64, code Code) string {
	return fmt.Sprintf("%.2f %s", amount, code)
}
