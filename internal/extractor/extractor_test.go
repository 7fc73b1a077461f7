package extractor_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

var fixedNow = time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)

func newExtractor() *extractor.Extractor {
	return extractor.New(configs.DefaultRules())
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Monto: $45.90 Total: $12.00", "45.90"},
		{"VALOR USD 1,250.00 comision 0.41", "1250.00"},
		{"Pago: 20.00", "20.00"},
		{"saldo 0.00 debitado 35.50", "35.50"},
		{"sin montos aqui", "0.00"},
		{"", "0.00"},
	}
	for _, tc := range cases {
		if got := extractor.ExtractAmount(tc.text); got != tc.want {
			t.Fatalf("ExtractAmount(%q) got=%s want=%s", tc.text, got, tc.want)
		}
	}
}

func TestExtractAmount_KeywordWinsOverBare(t *testing.T) {
	// 999.99 is bare, so the anchored capture is used even though it is smaller
	got := extractor.ExtractAmount("Total: $10.00 cuenta 999.99")
	if got != "10.00" {
		t.Fatalf("got=%s want=10.00", got)
	}
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"15 Ene 2024", "15/01/2024"},
		{"2024-01-15", "15/01/2024"},
		{"Fecha: 5/3/24", "05/03/2024"},
		{"2023 dic 9", "09/12/2023"},
		{"Fecha 07-DIC-23 10:45", "07/12/2023"},
		{"no date here", "07/03/2025"},
	}
	for _, tc := range cases {
		if got := extractor.ExtractDate(tc.text, fixedNow); got != tc.want {
			t.Fatalf("ExtractDate(%q) got=%s want=%s", tc.text, got, tc.want)
		}
	}
}

func TestIdentifyBank(t *testing.T) {
	e := newExtractor()
	cases := []struct {
		text string
		want string
	}{
		{"BANCO DEL PACÍFICO", "Banco del Pacífico"},
		{"banco del pacifico", "Banco del Pacífico"},
		{"Transferencia Pichincha", "Banco Pichincha"},
		{"Cooperativa Jardín Azuayo", "Cooperativa Jardín Azuayo"},
		{"CB Móvil", "Cooperativa CB"},
		{"Banco Desconocido", extractor.UnknownBank},
		{"", extractor.UnknownBank},
	}
	for _, tc := range cases {
		if got := e.IdentifyBank(tc.text); got != tc.want {
			t.Fatalf("IdentifyBank(%q) got=%s want=%s", tc.text, got, tc.want)
		}
	}
}

func TestExtractDocumentNumber(t *testing.T) {
	e := newExtractor()
	cases := []struct {
		text string
		want string
	}{
		{"Comprobante No. 123456789 Fecha 15/01/2024", "123456789"},
		{"Banco Pichincha\nTransacción #: 20240115abc", "20240115ABC"},
		{"Banco Pichincha 123", extractor.DocumentNotFound},
		{"ab12cd34ef", extractor.DocumentNotFound},
		{"ab12cd34ef 5", "AB12CD34EF"},
		{"", extractor.DocumentNotFound},
	}
	for _, tc := range cases {
		if got := e.ExtractDocumentNumber(tc.text); got != tc.want {
			t.Fatalf("ExtractDocumentNumber(%q) got=%s want=%s", tc.text, got, tc.want)
		}
	}
}

func TestDetectIntent(t *testing.T) {
	e := newExtractor()
	cases := []struct {
		text string
		want extractor.Intent
	}{
		{"hola, estoy sin internet desde ayer", extractor.IntentNoInternet},
		{"Estoy sin señal en la tele", extractor.IntentNoTV},
		{"estoy sin senal", extractor.IntentNoTV},
		{"Ya pagué y no se refleja", extractor.IntentPaymentProblem},
		{"quiero un plan para aumentar megas", extractor.IntentPlanInfo},
		// one hit each: earlier category wins
		{"sin internet y sin señal", extractor.IntentNoInternet},
		{"buenas tardes", extractor.IntentNone},
	}
	for _, tc := range cases {
		if got := e.DetectIntent(tc.text); got != tc.want {
			t.Fatalf("DetectIntent(%q) got=%q want=%q", tc.text, got, tc.want)
		}
	}
}

func TestAccentInsensitivity(t *testing.T) {
	e := newExtractor()
	pairs := [][2]string{
		{"Depósito Banco del Pacífico Transacción: 7788990011 Valor: $30.00 15 Ene 2024",
			"Deposito Banco del Pacifico Transaccion: 7788990011 Valor: $30.00 15 Ene 2024"},
		{"Número de transacción 55667788 Cooperativa Jardín Azuayo",
			"Numero de transaccion 55667788 Cooperativa Jardin Azuayo"},
	}
	for _, p := range pairs {
		a := e.Extract(p[0], "h", fixedNow)
		b := e.Extract(p[1], "h", fixedNow)
		if !a.Amount.Equal(b.Amount) || a.Date != b.Date || a.Bank != b.Bank || a.Document != b.Document {
			t.Fatalf("extraction differs: %+v vs %+v", a, b)
		}
		if e.DetectIntent(p[0]) != e.DetectIntent(p[1]) {
			t.Fatalf("intent differs for %q", p[0])
		}
	}
}

func TestExtract(t *testing.T) {
	e := newExtractor()
	text := "Banco Pichincha\nTransferencia exitosa\nMonto: $45.90\nFecha: 15 Ene 2024\nComprobante No. 987654321"
	got := e.Extract(text, "a1b2c3d4e5f60718", fixedNow)

	if got.AmountString() != "45.90" {
		t.Fatalf("Amount got=%s want=45.90", got.AmountString())
	}
	if got.Date != "15/01/2024" || got.DateFallback {
		t.Fatalf("Date got=%s fallback=%v want=15/01/2024", got.Date, got.DateFallback)
	}
	if got.Bank != "Banco Pichincha" {
		t.Fatalf("Bank got=%s want=Banco Pichincha", got.Bank)
	}
	if got.Document != "987654321" {
		t.Fatalf("Document got=%s want=987654321", got.Document)
	}
	if got.Hash != "a1b2c3d4e5f60718" {
		t.Fatalf("Hash got=%s", got.Hash)
	}
}

func TestAssess(t *testing.T) {
	full := models.ExtractionResult{
		Amount:   decimal.RequireFromString("45.90"),
		Date:     "15/01/2024",
		Bank:     "Banco Pichincha",
		Document: "987654321",
	}
	if c := extractor.Assess(full); c.Level != extractor.ConfidenceHigh || c.RequiresReview {
		t.Fatalf("full extraction got=%+v want high without review", c)
	}

	partial := full
	partial.Bank = extractor.UnknownBank
	partial.Document = extractor.DocumentNotFound
	if c := extractor.Assess(partial); c.Level != extractor.ConfidenceMedium || len(c.Missing) != 2 {
		t.Fatalf("partial extraction got=%+v want medium with 2 missing", c)
	}

	empty := models.ExtractionResult{Amount: decimal.Zero, DateFallback: true, Bank: extractor.UnknownBank, Document: extractor.DocumentNotFound}
	if c := extractor.Assess(empty); c.Level != extractor.ConfidenceLow || !c.RequiresReview || c.Score != 0 {
		t.Fatalf("empty extraction got=%+v want low score 0", c)
	}
}
