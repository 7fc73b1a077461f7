// csv.go - File backed ledger (pagos_registrados.csv)

package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// CSVHeader is the column order of the ledger file
var CSVHeader = []string{"ts", "nombre", "cedula", "monto", "fecha", "documento", "banco", "image_ref", "hash"}

const utf8BOM = "\ufeff"

// CSVBackend stores entries in a CSV file with a header row
type CSVBackend struct {
	path string
	mu   sync.Mutex
}

// NewCSVBackend returns a backend writing to path. The file is created on first use.
func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{path: path}
}

func (b *CSVBackend) ensureFile() error {
	if _, err := os.Stat(b.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.Create(b.path)
	if err != nil {
		return fmt.Errorf("failed to create ledger file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Append implements Backend
func (b *CSVBackend) Append(_ context.Context, entry models.LedgerEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureFile(); err != nil {
		return err
	}

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		FormatTimestamp(entry.Timestamp),
		entry.ClientName,
		entry.ClientID,
		entry.Amount,
		entry.Date,
		entry.Document,
		entry.Bank,
		entry.ImageRef,
		entry.Hash,
	}); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Hashes implements Backend
func (b *CSVBackend) Hashes(ctx context.Context) (map[string]struct{}, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return nil, err
	}
	hashes := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if h := strings.TrimSpace(e.Hash); h != "" {
			hashes[h] = struct{}{}
		}
	}
	return hashes, nil
}

// Entries implements Backend
func (b *CSVBackend) Entries(_ context.Context) ([]models.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureFile(); err != nil {
		return nil, err
	}

	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimPrefix(strings.TrimSpace(name), utf8BOM)] = i
	}
	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	var entries []models.LedgerEntry
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %w", err)
		}
		ts, _ := time.Parse("2006-01-02T15:04:05Z", field(row, "ts"))
		entries = append(entries, models.LedgerEntry{
			Timestamp:  ts,
			ClientName: field(row, "nombre"),
			ClientID:   field(row, "cedula"),
			Amount:     field(row, "monto"),
			Date:       field(row, "fecha"),
			Document:   field(row, "documento"),
			Bank:       field(row, "banco"),
			ImageRef:   field(row, "image_ref"),
			Hash:       field(row, "hash"),
		})
	}
	return entries, nil
}
