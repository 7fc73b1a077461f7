// phone.go - Contact phone normalization for support tickets

package conversation

import (
	"strings"
	"unicode"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// sameNumberAliases mean "use the number I am writing from"
var sameNumberAliases = map[string]struct{}{
	"este numero":  {},
	"este":         {},
	"mismo numero": {},
	"este mismo":   {},
}

// NormalizePhone turns user input into a local 10 digit mobile number
// (09XXXXXXXX). Aliases resolve to sender. ok is false for anything else.
func NormalizePhone(input, sender string) (string, bool) {
	folded := strings.TrimSpace(common.Fold(input))
	if _, alias := sameNumberAliases[folded]; alias {
		return sender, true
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, input)

	switch {
	case strings.HasPrefix(digits, "09") && len(digits) == 10:
		return digits, true
	case strings.HasPrefix(digits, "5939") && len(digits) == 12:
		return "0" + digits[3:], true
	case strings.HasPrefix(digits, "9") && len(digits) == 9:
		return "0" + digits, true
	}
	return "", false
}
