// confidence.go - Extraction confidence summary
//
// Every field that fell back to its default lowers the score. The summary is
// attached to the payment notice so support knows which receipts to check by hand.

package extractor

import (
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// Confidence levels
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// fieldWeights must add up to 100
var fieldWeights = map[string]float64{
	"amount":   40,
	"date":     20,
	"bank":     20,
	"document": 20,
}

// Confidence is the outcome of Assess
type Confidence struct {
	Score          float64  `json:"score"` // 0-100
	Level          string   `json:"level"`
	RequiresReview bool     `json:"requires_review"`
	Missing        []string `json:"missing,omitempty"` // fields that fell back to defaults
}

// Assess scores an extraction by which fields were actually found
func Assess(result models.ExtractionResult) Confidence {
	var missing []string
	if !result.Amount.IsPositive() {
		missing = append(missing, "amount")
	}
	if result.DateFallback {
		missing = append(missing, "date")
	}
	if result.Bank == "" || result.Bank == UnknownBank {
		missing = append(missing, "bank")
	}
	if result.Document == "" || result.Document == DocumentNotFound {
		missing = append(missing, "document")
	}

	score := 100.0
	for _, field := range missing {
		score -= fieldWeights[field]
	}

	level := determineConfidenceLevel(score)
	return Confidence{
		Score:          score,
		Level:          level,
		RequiresReview: level == ConfidenceLow || !result.Amount.IsPositive(),
		Missing:        missing,
	}
}

func determineConfidenceLevel(score float64) string {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Label is the Spanish text used in notifications
func (c Confidence) Label() string {
	switch c.Level {
	case ConfidenceHigh:
		return "Alta"
	case ConfidenceMedium:
		return "Media"
	default:
		return "Baja"
	}
}
