package currency

// BaseCurrency is the currency all rate entries and provider-native
// prices are normalized against.
const BaseCurrency Code = USD

// Currency codes served by the storefront.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	RUB Code = "RUB"
	UAH Code = "UAH"
	BYN Code = "BYN"
	KZT Code = "KZT"
	PLN Code = "PLN"
	TRY Code = "TRY"
)

// rates maps a currency to its value per one unit of the base currency.
// Invariant: rates[BaseCurrency] == 1.
var rates = map[Code]float64{
	USD: 1,
	EUR: 0.92,
	GBP: 0.79,
	RUB: 70,
	UAH: 27,
	BYN: 2.5,
	KZT: 425,
	PLN: 3.9,
	TRY: 8.6,
}
