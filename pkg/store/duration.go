package store

import "fmt"

// Relative-time phrases for package durations, covering the locales
// the site ships (en, ru). Unknown locales and units fall back to the
// English "in N <unit>s" form.

var enUnits = map[string][2]string{
	"minute": {"minute", "minutes"},
	"hour":   {"hour", "hours"},
	"day":    {"day", "days"},
	"week":   {"week", "weeks"},
	"month":  {"month", "months"},
	"year":   {"year", "years"},
}

// Russian noun forms: one, few (2-4), many.
var ruUnits = map[string][3]string{
	"minute": {"минуту", "минуты", "минут"},
	"hour":   {"час", "часа", "часов"},
	"day":    {"день", "дня", "дней"},
	"week":   {"неделю", "недели", "недель"},
	"month":  {"месяц", "месяца", "месяцев"},
	"year":   {"год", "года", "лет"},
}

func localizeDuration(locale string, amount int, unit string) string {
	if locale == "ru" {
		if forms, ok := ruUnits[unit]; ok {
			return fmt.Sprintf("через %d %s", amount, ruPlural(amount, forms))
		}
	}

	forms, ok := enUnits[unit]
	if !ok {
		forms = [2]string{unit, unit + "s"}
	}
	if amount == 1 {
		return fmt.Sprintf("in %d %s", amount, forms[0])
	}
	return fmt.Sprintf("in %d %s", amount, forms[1])
}

func ruPlural(n int, forms [3]string) string {
	n = n % 100
	if n >= 11 && n <= 14 {
		return forms[2]
	}
	switch n % 10 {
	case 1:
		return forms[0]
	case 2, 3, 4:
		return forms[1]
	default:
		return forms[2]
	}
}
