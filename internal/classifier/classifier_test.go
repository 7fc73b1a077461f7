package classifier_test

import (
	"testing"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/classifier"
)

func newClassifier() *classifier.Classifier {
	return classifier.New(configs.DefaultRules())
}

func TestIsValidReceipt(t *testing.T) {
	c := newClassifier()
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"full receipt", "Transferencia exitosa\nBanco Pichincha\nMonto: $45.90", true},
		{"three signals", "Comprobante de deposito Produbanco 120.00", true},
		{"amount only", "Total 45.90", false},
		{"greeting", "hola buenos dias", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		if got := c.IsValidReceipt(tc.text); got != tc.want {
			t.Fatalf("%s: IsValidReceipt got=%v want=%v (signals=%+v)", tc.name, got, tc.want, c.ReceiptSignals(tc.text))
		}
	}
}

func TestReceiptSignals_FinancialTermIsSubstringCheck(t *testing.T) {
	c := newClassifier()
	s := c.ReceiptSignals("Cuenta destino 2200123456")
	if !s.FinancialTerm {
		t.Fatalf("FinancialTerm got=false want=true")
	}
	if s.Amount {
		t.Fatalf("Amount got=true want=false")
	}
}

func TestIsDirectCollection(t *testing.T) {
	c := newClassifier()
	cases := []struct {
		text string
		want bool
	}{
		{"TRONCALNET S.A.\nPago de servicios\nCuenta o contrato: 123", true},
		{"Punto de Recaudación TRONCALNET", true},
		{"Punto de recaudacion troncalnet", true},
		{"Transferencia a TRONCALNET", false},
		{"Pago de servicios agua potable", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.IsDirectCollection(tc.text); got != tc.want {
			t.Fatalf("IsDirectCollection(%q) got=%v want=%v", tc.text, got, tc.want)
		}
	}
}

func TestRecipientChecks(t *testing.T) {
	c := newClassifier()
	if !c.ContainsCompanyName("Beneficiario: TroncalNet") {
		t.Fatalf("ContainsCompanyName got=false want=true")
	}
	if !c.MatchesAuthorizedRecipient("Beneficiario: ISMAEL RODRÍGUEZ") {
		t.Fatalf("MatchesAuthorizedRecipient got=false want=true")
	}
	if c.RecipientOK("Beneficiario: Maria Lopez") {
		t.Fatalf("RecipientOK got=true want=false")
	}
	if c.RecipientOK("") || c.ContainsCompanyName("") || c.MatchesAuthorizedRecipient("") {
		t.Fatalf("empty text must fail closed")
	}
}

func TestAccentInsensitivity(t *testing.T) {
	c := newClassifier()
	pairs := [][2]string{
		{"Transacción exitosa Banco del Pacífico Depósito 10.50", "Transaccion exitosa Banco del Pacifico Deposito 10.50"},
		{"TRONCALNET Recaudación", "TRONCALNET Recaudacion"},
		{"Cooperativa Jardín Azuayo número de cuenta", "Cooperativa Jardin Azuayo numero de cuenta"},
		{"Pagó a RODRÍGUEZ QUINTEROS", "Pago a RODRIGUEZ QUINTEROS"},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		if c.ReceiptSignals(a) != c.ReceiptSignals(b) {
			t.Fatalf("ReceiptSignals differ: %q=%+v %q=%+v", a, c.ReceiptSignals(a), b, c.ReceiptSignals(b))
		}
		if c.IsDirectCollection(a) != c.IsDirectCollection(b) {
			t.Fatalf("IsDirectCollection differs for %q / %q", a, b)
		}
		if c.RecipientOK(a) != c.RecipientOK(b) {
			t.Fatalf("RecipientOK differs for %q / %q", a, b)
		}
	}
}
