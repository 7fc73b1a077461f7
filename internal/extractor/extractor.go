// extractor.go - Structured field extraction from receipt OCR text

package extractor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// Extractor holds the rule-driven tables (banks, intents, document exclusions).
// Amount and date extraction need no rules and are package functions.
type Extractor struct {
	banks              []bankEntry
	intents            []intentEntry
	documentExclusions map[string]struct{}
}

// New builds an Extractor from rules
func New(rules configs.Rules) *Extractor {
	exclusions := make(map[string]struct{})
	for _, tok := range common.FoldAll(rules.DocumentBankTokens) {
		exclusions[tok] = struct{}{}
	}
	for _, tok := range common.FoldAll(rules.DocumentLabels) {
		exclusions[tok] = struct{}{}
	}
	return &Extractor{
		banks:              newBankTable(rules.Banks),
		intents:            newIntentTable(rules.Intents),
		documentExclusions: exclusions,
	}
}

// Extract runs every field extractor over text
func (e *Extractor) Extract(text, imageHash string, now time.Time) models.ExtractionResult {
	amount, ok := AmountValue(text)
	if !ok {
		amount = decimal.Zero
	}
	date, found := ParseDate(text)
	if !found {
		date = ExtractDate("", now)
	}
	return models.ExtractionResult{
		Amount:       amount,
		Date:         date,
		Bank:         e.IdentifyBank(text),
		Document:     e.ExtractDocumentNumber(text),
		Hash:         imageHash,
		DateFallback: !found,
	}
}
