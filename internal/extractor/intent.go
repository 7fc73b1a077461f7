// intent.go - Support intent detection from free text

package extractor

import (
	"strings"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// Intent is the support category a free-text message points at
type Intent string

const (
	IntentNone           Intent = ""
	IntentNoInternet     Intent = "SIN_INTERNET"
	IntentNoTV           Intent = "SIN_TV"
	IntentPaymentProblem Intent = "PROBLEMA_PAGO"
	IntentPlanInfo       Intent = "INFO_PLANES"
)

type intentEntry struct {
	intent   Intent
	keywords []string
}

func newIntentTable(intents []configs.IntentKeywords) []intentEntry {
	table := make([]intentEntry, 0, len(intents))
	for _, in := range intents {
		table = append(table, intentEntry{intent: Intent(in.Intent), keywords: common.FoldAll(in.Keywords)})
	}
	return table
}

// DetectIntent counts keyword hits per intent. The highest count wins and
// ties go to the earlier intent; no hits at all gives IntentNone.
func (e *Extractor) DetectIntent(text string) Intent {
	if strings.TrimSpace(text) == "" {
		return IntentNone
	}
	folded := common.Fold(text)

	best, bestScore := IntentNone, 0
	for _, entry := range e.intents {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(folded, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.intent, score
		}
	}
	return best
}

// IsTechnical reports whether the intent is an internet or TV fault
func (i Intent) IsTechnical() bool {
	return i == IntentNoInternet || i == IntentNoTV
}
