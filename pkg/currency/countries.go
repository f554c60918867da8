package currency

// countryToCurrency maps ISO 3166-1 alpha-2 country codes to the
// currency the storefront prefers to quote for visitors from there.
// Countries absent here fall back to the caller-supplied backup.
var countryToCurrency = map[string]Code{
	"US": USD,
	"RU": RUB,
	"UA": UAH,
	"BY": BYN,
	"KZ": KZT,
	"PL": PLN,
	"TR": TRY,
	"GB": GBP,
	"DE": EUR,
	"FR": EUR,
	"ES": EUR,
	"IT": EUR,
	"NL": EUR,
	"AT": EUR,
	"BE": EUR,
	"PT": EUR,
	"FI": EUR,
	"IE": EUR,
	"GR": EUR,
	"EE": EUR,
	"LV": EUR,
	"LT": EUR,
}
