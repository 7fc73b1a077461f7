package ledger_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/ledger"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

func TestRecordPayment_DuplicateHashWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagos_registrados.csv")
	l := ledger.New(ledger.NewCSVBackend(path))
	ctx := context.Background()

	if !l.RecordPayment(ctx, "Juan Perez", "0912345678.0", "45.90", "15/01/2024", "ABC123", "Banco Pichincha", "bucket/x.jpg", "f0f0f0f0f0f0f0f0") {
		t.Fatalf("first RecordPayment should succeed")
	}
	if l.RecordPayment(ctx, "Juan Perez", "0912345678", "45.90", "15/01/2024", "ABC123", "Banco Pichincha", "bucket/y.jpg", "f0f0f0f0f0f0f0f0") {
		t.Fatalf("second RecordPayment with same hash should fail")
	}

	entries, err := l.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries got=%d want=1", len(entries))
	}
	e := entries[0]
	if e.ClientID != "0912345678" || e.Amount != "45.90" || e.Bank != "Banco Pichincha" || e.Hash != "f0f0f0f0f0f0f0f0" {
		t.Fatalf("entry got=%+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Fatalf("timestamp should round trip")
	}

	if _, ok := l.ExistingHashes(ctx)["f0f0f0f0f0f0f0f0"]; !ok {
		t.Fatalf("hash missing from ExistingHashes")
	}
}

func TestCSVBackend_FileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "pagos.csv")
	l := ledger.New(ledger.NewCSVBackend(path))
	if !l.RecordPayment(context.Background(), "Ana, Lopez", "1", "10.00", "01/02/2024", "No encontrado", "Entidad no identificada", "", "aa") {
		t.Fatalf("RecordPayment failed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff")), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines got=%d want=2:\n%s", len(lines), data)
	}
	if lines[0] != "ts,nombre,cedula,monto,fecha,documento,banco,image_ref,hash" {
		t.Fatalf("header got=%q", lines[0])
	}
	if !strings.Contains(lines[1], `"Ana, Lopez"`) || !strings.HasSuffix(lines[1], ",aa") {
		t.Fatalf("row got=%q", lines[1])
	}
	ts := strings.SplitN(lines[1], ",", 2)[0]
	if !strings.HasSuffix(ts, "Z") || len(ts) != len("2024-01-02T03:04:05Z") {
		t.Fatalf("timestamp got=%q", ts)
	}
}

func TestExistingHashes_EmptyLedger(t *testing.T) {
	l := ledger.New(ledger.NewCSVBackend(filepath.Join(t.TempDir(), "p.csv")))
	if got := l.ExistingHashes(context.Background()); len(got) != 0 {
		t.Fatalf("hashes got=%v want empty", got)
	}
}

type failingBackend struct{ appendErr, hashErr error }

func (f failingBackend) Append(context.Context, models.LedgerEntry) error { return f.appendErr }
func (f failingBackend) Hashes(context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, f.hashErr
}
func (f failingBackend) Entries(context.Context) ([]models.LedgerEntry, error) { return nil, nil }

func TestRecordPayment_BackendFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		backend failingBackend
	}{
		{"append fails", failingBackend{appendErr: errors.New("disk full")}},
		{"hash read fails", failingBackend{hashErr: errors.New("io")}},
		{"unique index", failingBackend{appendErr: ledger.ErrDuplicate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.New(tt.backend)
			if l.RecordPayment(ctx, "n", "1", "1.00", "", "", "", "", "h") {
				t.Fatalf("RecordPayment should report failure")
			}
		})
	}

	l := ledger.New(failingBackend{hashErr: errors.New("io")})
	if got := l.ExistingHashes(ctx); got == nil || len(got) != 0 {
		t.Fatalf("ExistingHashes on failure got=%v want empty set", got)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := map[string]string{
		" 0912345678.0 ": "0912345678",
		"1 234,5":        "12345",
		"0102030405001":  "0102030405001",
	}
	for in, want := range tests {
		if got := ledger.NormalizeID(in); got != want {
			t.Fatalf("NormalizeID(%q) got=%q want=%q", in, got, want)
		}
	}
}

const debtCSV = `REPORTE DE CARTERA,,,,,
SERVICIO,CÉDULA,APELLIDOS,NOMBRES,ENERO,FEBRERO
Internet,0912345678.0,Pérez López,Juan Carlos,15.50,0
TV,0101010101,Quinteros,María,,20
`

func TestDebtBook(t *testing.T) {
	book, err := ledger.ParseDebtBook(strings.NewReader(debtCSV))
	if err != nil {
		t.Fatalf("ParseDebtBook error: %v", err)
	}
	if book.Len() != 2 {
		t.Fatalf("records got=%d want=2", book.Len())
	}

	rec, ok := book.Lookup("0912345678")
	if !ok || rec.Name != "Pérez López Juan Carlos" || rec.Total.StringFixed(2) != "15.50" {
		t.Fatalf("by id got=%+v ok=%v", rec, ok)
	}
	if len(rec.Months) != 1 || rec.Months[0].Month != "enero" {
		t.Fatalf("months got=%+v", rec.Months)
	}

	rec, ok = book.Lookup("maria")
	if !ok || rec.ID != "0101010101" || rec.Total.StringFixed(2) != "20.00" {
		t.Fatalf("by name got=%+v ok=%v", rec, ok)
	}

	if _, ok := book.Lookup("nadie"); ok {
		t.Fatalf("unknown client should not match")
	}
	if _, ok := book.Lookup("  "); ok {
		t.Fatalf("blank query should not match")
	}
}

func TestDebtBook_TotalColumn(t *testing.T) {
	book, err := ledger.ParseDebtBook(strings.NewReader("cedula,nombre,deuda\n123,Ana,$7.25\n"))
	if err != nil {
		t.Fatalf("ParseDebtBook error: %v", err)
	}
	rec, ok := book.Lookup("ANA")
	if !ok || rec.Total.StringFixed(2) != "7.25" {
		t.Fatalf("lookup got=%+v ok=%v", rec, ok)
	}
	if _, err := ledger.ParseDebtBook(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatalf("expected header error")
	}
}
