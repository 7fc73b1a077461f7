// classifier.go - Heuristic checks over OCR text that gate the receipt pipeline
//
// Every predicate compares accent-folded, lowercased text, and every predicate
// is false for empty input.

package classifier

import (
	"regexp"
	"strings"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// amountPattern is the money shape used as a receipt signal
var amountPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)

// Signals records which of the four receipt signals fired
type Signals struct {
	TransactionKeyword bool
	Amount             bool
	Bank               bool
	FinancialTerm      bool
}

// Count returns how many signals fired
func (s Signals) Count() int {
	n := 0
	for _, ok := range []bool{s.TransactionKeyword, s.Amount, s.Bank, s.FinancialTerm} {
		if ok {
			n++
		}
	}
	return n
}

// Classifier decides what kind of document an OCR text represents
type Classifier struct {
	companyToken      string
	collectionPhrases []string
	recipients        []string
	transactionWords  []string
	banks             []string
	financialTerms    []string
	minReceiptSignals int
}

// New builds a Classifier with the vocabularies folded once
func New(rules configs.Rules) *Classifier {
	return &Classifier{
		companyToken:      common.Fold(rules.CompanyToken),
		collectionPhrases: common.FoldAll(rules.CollectionPhrases),
		recipients:        common.FoldAll(rules.AuthorizedRecipients),
		transactionWords:  common.FoldAll(rules.TransactionKeywords),
		banks:             common.FoldAll(rules.ReceiptBanks),
		financialTerms:    common.FoldAll(rules.FinancialTerms),
		minReceiptSignals: rules.MinReceiptSignals,
	}
}

// IsDirectCollection reports a payment made through an auto-reconciled
// collection channel: the company token plus any collection phrase.
func (c *Classifier) IsDirectCollection(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	folded := common.Fold(text)
	if !strings.Contains(folded, c.companyToken) {
		return false
	}
	return common.ContainsAny(folded, c.collectionPhrases)
}

// ReceiptSignals evaluates the four independent receipt signals
func (c *Classifier) ReceiptSignals(text string) Signals {
	if strings.TrimSpace(text) == "" {
		return Signals{}
	}
	folded := common.Fold(text)
	return Signals{
		TransactionKeyword: common.ContainsAny(folded, c.transactionWords),
		Amount:             amountPattern.MatchString(folded),
		Bank:               common.ContainsAny(folded, c.banks),
		FinancialTerm:      common.ContainsAny(folded, c.financialTerms),
	}
}

// IsValidReceipt is true when enough signals fire
func (c *Classifier) IsValidReceipt(text string) bool {
	return c.ReceiptSignals(text).Count() >= c.minReceiptSignals
}

// ContainsCompanyName reports whether the company is named in the text
func (c *Classifier) ContainsCompanyName(text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(common.Fold(text), c.companyToken)
}

// MatchesAuthorizedRecipient reports whether any authorized payee fragment appears
func (c *Classifier) MatchesAuthorizedRecipient(text string) bool {
	if text == "" {
		return false
	}
	return common.ContainsAny(common.Fold(text), c.recipients)
}

// RecipientOK is the destination gate: company name or an authorized payee
func (c *Classifier) RecipientOK(text string) bool {
	return c.ContainsCompanyName(text) || c.MatchesAuthorizedRecipient(text)
}
