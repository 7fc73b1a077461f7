// models.go - Shared data types for clients, receipts and ledger entries

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientRecord is one row of the client registry
type ClientRecord struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// MatchCandidate is a registry row scored against a user query
type MatchCandidate struct {
	Client ClientRecord `json:"client"`
	Score  int          `json:"score"`
}

// ExtractionResult holds the fields read from one receipt
type ExtractionResult struct {
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`     // DD/MM/YYYY
	Bank     string          `json:"bank"`     // canonical name or "Entidad no identificada"
	Document string          `json:"document"` // uppercased or "No encontrado"
	Hash     string          `json:"hash"`     // perceptual hash, 16 hex chars

	// Fields that were not found in the text and fell back to a default
	DateFallback bool `json:"date_fallback,omitempty"`
}

// AmountString formats the amount with exactly two decimals
func (r ExtractionResult) AmountString() string {
	return r.Amount.StringFixed(2)
}

// LedgerEntry is one registered payment
type LedgerEntry struct {
	Timestamp  time.Time `json:"ts" bson:"ts" db:"ts"`
	ClientName string    `json:"nombre" bson:"nombre" db:"nombre"`
	ClientID   string    `json:"cedula" bson:"cedula" db:"cedula"`
	Amount     string    `json:"monto" bson:"monto" db:"monto"`
	Date       string    `json:"fecha" bson:"fecha" db:"fecha"`
	Document   string    `json:"documento" bson:"documento" db:"documento"`
	Bank       string    `json:"banco" bson:"banco" db:"banco"`
	ImageRef   string    `json:"image_ref" bson:"image_ref" db:"image_ref"`
	Hash       string    `json:"hash" bson:"hash" db:"hash"`
}
