// Package exchange answers USD exchange-rate questions for Latin American
// countries from a static table, letting the gateway produce a useful
// fallback without any backend call.
package exchange

import (
	"fmt"
	"strings"
)

// rates maps country name to its USD exchange rate.
var rates = map[string]string{
	"Brazil":    "5.2 BRL",
	"Mexico":    "17.1 MXN",
	"Argentina": "900 ARS",
	"Colombia":  "3950 COP",
	"Chile":     "925 CLP",
	"Peru":      "3.7 PEN",
}

var rateKeywords = []string{"exchange", "rate", "currency"}

// Countries returns the countries with known rates.
func Countries() []string {
	out := make([]string, 0, len(rates))
	for c := range rates {
		out = append(out, c)
	}
	return out
}

// Lookup returns the exchange-rate answer for a country, matching
// case-insensitively.
func Lookup(country string) (string, bool) {
	for name, rate := range rates {
		if strings.EqualFold(name, country) {
			return fmt.Sprintf("The current exchange rate in %s is 1 USD = %s.", name, rate), true
		}
	}
	return "", false
}

// AnswerLocally answers a query from the rate table when it mentions both an
// exchange-rate keyword and a known country. It returns false for anything
// it cannot answer.
func AnswerLocally(query string) (string, bool) {
	q := strings.ToLower(query)

	keyword := false
	for _, k := range rateKeywords {
		if strings.Contains(q, k) {
			keyword = true
			break
		}
	}
	if !keyword {
		return "", false
	}

	for name := range rates {
		if strings.Contains(q, strings.ToLower(name)) {
			answer, _ := Lookup(name)
			return answer, true
		}
	}
	return "", false
}
