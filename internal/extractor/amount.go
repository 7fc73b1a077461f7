// amount.go - Transaction amount extraction

package extractor

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// DefaultAmount is returned when no amount is found
const DefaultAmount = "0.00"

// AmountMatchers are anchored to a keyword or a currency marker.
// Every capture counts and the largest one wins.
var AmountMatchers = []Matcher{
	newMatcher("keyword", `(?:monto|valor|total|pago)\s*:?\s*(?:usd|\$)?\s*([\d,]+\.\d{2})`),
	newMatcher("currency", `(?:usd|\$)\s*([\d,]+\.\d{2})`),
}

// AmountFallback is only consulted when no anchored matcher captured anything
var AmountFallback = newMatcher("bare", `([\d,]+\.\d{2})`)

// ExtractAmount returns the largest plausible amount with two decimals, or "0.00"
func ExtractAmount(text string) string {
	amount, ok := AmountValue(text)
	if !ok {
		return DefaultAmount
	}
	return amount.StringFixed(2)
}

// AmountValue is ExtractAmount as a decimal; ok is false when nothing matched
func AmountValue(text string) (decimal.Decimal, bool) {
	if text == "" {
		return decimal.Zero, false
	}
	folded := common.Fold(text)

	var found []decimal.Decimal
	for _, m := range AmountMatchers {
		for _, raw := range m.FindAll(folded) {
			if v, err := parseAmount(raw); err == nil {
				found = append(found, v)
			}
		}
	}

	if len(found) == 0 {
		for _, raw := range AmountFallback.FindAll(folded) {
			if v, err := parseAmount(raw); err == nil && v.IsPositive() {
				found = append(found, v)
			}
		}
	}

	if len(found) == 0 {
		return decimal.Zero, false
	}
	return decimal.Max(found[0], found[1:]...), true
}

// parseAmount drops thousands separators: "1,250.00" -> 1250.00
func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
}
