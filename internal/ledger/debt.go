// debt.go - Outstanding balances per client (deuda_clientes.csv)

package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// Months are the monthly balance columns, in calendar order
var Months = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var (
	idColumns      = []string{"cedula", "id", "ruc", "identificacion"}
	surnameColumns = []string{"apellidos", "apellido", "apellidos_y_nombres"}
	nameColumns    = []string{"nombres", "nombre", "razon social"}
)

// MonthDebt is the balance owed for one month
type MonthDebt struct {
	Month  string
	Amount decimal.Decimal
}

// DebtRecord is one client row of the debt file
type DebtRecord struct {
	ID     string
	Name   string
	Total  decimal.Decimal
	Months []MonthDebt // only months with a positive balance
}

// DebtBook answers balance lookups by id or name
type DebtBook struct {
	records []DebtRecord
}

// LoadDebtBook reads the debt CSV at path
func LoadDebtBook(path string) (*DebtBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open debt file: %w", err)
	}
	defer f.Close()
	return ParseDebtBook(f)
}

// ParseDebtBook reads debt rows from r. The header is the first row that
// contains a "servicio" or an id column; rows above it are ignored.
func ParseDebtBook(r io.Reader) (*DebtBook, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read debt file: %w", err)
	}

	headerAt := -1
	var col map[string]int
	for i, row := range rows {
		c := columnIndex(row)
		if _, ok := c["servicio"]; ok || pick(c, idColumns) >= 0 {
			headerAt, col = i, c
			break
		}
	}
	if headerAt < 0 {
		return nil, errors.New("debt file has no recognizable header")
	}

	idCol := pick(col, idColumns)
	surnameCol := pick(col, surnameColumns)
	nameCol := pick(col, nameColumns)

	book := &DebtBook{}
	for _, row := range rows[headerAt+1:] {
		cell := func(i int) string {
			if i >= 0 && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rec := DebtRecord{ID: NormalizeID(cell(idCol))}
		switch {
		case surnameCol >= 0 && nameCol >= 0:
			rec.Name = strings.Join(strings.Fields(cell(surnameCol)+" "+cell(nameCol)), " ")
		case nameCol >= 0:
			rec.Name = cell(nameCol)
		}

		hasMonths := false
		for _, m := range Months {
			i, ok := col[m]
			if !ok {
				continue
			}
			hasMonths = true
			amount := parseAmount(cell(i))
			rec.Total = rec.Total.Add(amount)
			if amount.IsPositive() {
				rec.Months = append(rec.Months, MonthDebt{Month: m, Amount: amount})
			}
		}
		if !hasMonths {
			if i, ok := col["deuda"]; ok {
				rec.Total = parseAmount(cell(i))
			}
		}

		if rec.ID == "" && rec.Name == "" {
			continue
		}
		book.records = append(book.records, rec)
	}
	return book, nil
}

// Lookup finds a record by exact id first, then by accent-insensitive name substring
func (b *DebtBook) Lookup(query string) (DebtRecord, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return DebtRecord{}, false
	}
	for _, rec := range b.records {
		if rec.ID == q {
			return rec, true
		}
	}
	folded := common.Fold(q)
	for _, rec := range b.records {
		if strings.Contains(common.Fold(rec.Name), folded) {
			return rec, true
		}
	}
	return DebtRecord{}, false
}

// Len returns the number of loaded records
func (b *DebtBook) Len() int {
	return len(b.records)
}

func columnIndex(row []string) map[string]int {
	col := make(map[string]int, len(row))
	for i, name := range row {
		key := common.Fold(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
		if _, seen := col[key]; !seen && key != "" {
			col[key] = i
		}
	}
	return col
}

func pick(col map[string]int, candidates []string) int {
	for _, c := range candidates {
		if i, ok := col[c]; ok {
			return i
		}
	}
	return -1
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
