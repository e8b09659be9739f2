package jobs

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultCurrency = "USD"

// Salary is an optional pay range. Zero Min or Max means that bound is unknown.
type Salary struct {
	Specified bool    `json:"specified"`
	Min       float64 `json:"min,omitempty"`
	Max       float64 `json:"max,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}

// NewSalary builds a range from provider bounds. Non-positive bounds are treated as absent
// and swapped bounds are reordered.
func NewSalary(min, max float64, currency string) Salary {
	if min < 0 || math.IsNaN(min) {
		min = 0
	}
	if max < 0 || math.IsNaN(max) {
		max = 0
	}
	if min == 0 && max == 0 {
		return Salary{}
	}
	if min > 0 && max > 0 && min > max {
		min, max = max, min
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Salary{Specified: true, Min: min, Max: max, Currency: currency}
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"GBP": "£",
	"EUR": "€",
}

var amountPrinter = message.NewPrinter(language.English)

func (s Salary) String() string {
	if !s.Specified {
		return NotSpecified
	}

	switch {
	case s.Min > 0 && s.Max > 0:
		return s.amount(s.Min) + " - " + s.amount(s.Max) + " " + s.Currency
	case s.Min > 0:
		return s.amount(s.Min) + "+ " + s.Currency
	default:
		return "Up to " + s.amount(s.Max) + " " + s.Currency
	}
}

func (s Salary) amount(v float64) string {
	return currencySymbols[s.Currency] + amountPrinter.Sprintf("%d", int64(math.Round(v)))
}

var (
	reSalaryAmount   = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(?:([kKmM])\b)?`)
	reSalaryCurrency = regexp.MustCompile(`\b([A-Z]{3})\b`)
)

// knownCurrencies are the codes accepted from free text. Other three-letter words
// ("DOE", "TBD") are not currencies.
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CAD": true, "AUD": true, "NZD": true,
	"CHF": true, "SEK": true, "NOK": true, "DKK": true, "PLN": true, "CZK": true,
	"INR": true, "SGD": true, "JPY": true, "CNY": true, "BRL": true, "ZAR": true,
	"RUB": true, "RUR": true, "KZT": true, "BYN": true, "UAH": true, "UZS": true,
	"AZN": true, "GEL": true, "KGS": true,
}

var symbolCurrencies = []struct{ symbol, code string }{
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"₽", "RUB"},
}

// ParseSalaryString reads free-text salaries such as "$90,000 - $120,000 USD", "80k+" or
// "Up to 100k". Unparseable input yields an unspecified salary.
func ParseSalaryString(s, defaultCurrency string) Salary {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NotSpecified) {
		return Salary{}
	}

	var amounts []float64
	for _, m := range reSalaryAmount.FindAllStringSubmatch(s, 2) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return Salary{}
	}

	currency := salaryCurrency(s, defaultCurrency)

	lower := strings.ToLower(s)
	switch {
	case len(amounts) == 2:
		return NewSalary(amounts[0], amounts[1], currency)
	case strings.HasPrefix(lower, "up to") || strings.HasPrefix(lower, "max"):
		return NewSalary(0, amounts[0], currency)
	case strings.Contains(s, "+") || strings.HasPrefix(lower, "from"):
		return NewSalary(amounts[0], 0, currency)
	default:
		return NewSalary(amounts[0], amounts[0], currency)
	}
}

func salaryCurrency(s, defaultCurrency string) string {
	for _, m := range reSalaryCurrency.FindAllStringSubmatch(s, -1) {
		if knownCurrencies[m[1]] {
			return m[1]
		}
	}
	for _, c := range symbolCurrencies {
		if strings.Contains(s, c.symbol) {
			return c.code
		}
	}
	return defaultCurrency
}
