// ledger.go - Append-only payment ledger with hash based duplicate detection

package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// ErrDuplicate is returned by a backend that refused an entry whose hash already exists
var ErrDuplicate = errors.New("payment hash already registered")

// Backend persists ledger entries
type Backend interface {
	Append(ctx context.Context, entry models.LedgerEntry) error
	Hashes(ctx context.Context) (map[string]struct{}, error)
	Entries(ctx context.Context) ([]models.LedgerEntry, error)
}

// Ledger records payments through a Backend. It never returns errors to
// callers: failures are logged and reported as false or empty results.
type Ledger struct {
	backend Backend
	now     func() time.Time

	// serializes the check-then-append of this process
	mu sync.Mutex
}

// New wraps backend
func New(backend Backend) *Ledger {
	return &Ledger{backend: backend, now: time.Now}
}

// RecordPayment appends one payment. It returns false when hash is already
// registered or when the backend fails.
func (l *Ledger) RecordPayment(ctx context.Context, name, id, amount, date, document, bank, imageRef, hash string) bool {
	logger := common.Logger().With(zap.String("hash", hash))

	l.mu.Lock()
	defer l.mu.Unlock()

	hash = strings.TrimSpace(hash)
	if hash != "" {
		existing, err := l.backend.Hashes(ctx)
		if err != nil {
			logger.Error("failed to read ledger hashes", zap.Error(err))
			return false
		}
		if _, dup := existing[hash]; dup {
			logger.Info("duplicate payment hash, not recorded")
			return false
		}
	}

	entry := models.LedgerEntry{
		Timestamp:  l.now().UTC().Truncate(time.Second),
		ClientName: strings.TrimSpace(name),
		ClientID:   NormalizeID(id),
		Amount:     strings.TrimSpace(amount),
		Date:       strings.TrimSpace(date),
		Document:   strings.TrimSpace(document),
		Bank:       strings.TrimSpace(bank),
		ImageRef:   strings.TrimSpace(imageRef),
		Hash:       hash,
	}

	if err := l.backend.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicate) {
			logger.Info("duplicate payment hash rejected by backend")
		} else {
			logger.Error("failed to append payment", zap.Error(err))
		}
		return false
	}

	logger.Info("💰 payment recorded",
		zap.String("cedula", entry.ClientID),
		zap.String("monto", entry.Amount),
		zap.String("banco", entry.Bank))
	return true
}

// ExistingHashes returns every registered hash, or an empty set on failure
func (l *Ledger) ExistingHashes(ctx context.Context) map[string]struct{} {
	hashes, err := l.backend.Hashes(ctx)
	if err != nil {
		common.Logger().Error("failed to read ledger hashes", zap.Error(err))
		return map[string]struct{}{}
	}
	return hashes
}

// Entries returns all registered payments in insertion order
func (l *Ledger) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	return l.backend.Entries(ctx)
}

// NormalizeID turns spreadsheet style identifiers ("0912345678.0", "1 234")
// into plain digit strings
func NormalizeID(id string) string {
	s := strings.TrimSpace(id)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSuffix(s, ".0")
}

// FormatTimestamp renders ts the way the CSV ledger stores it (UTC, seconds, Z suffix)
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format("2006-01-02T15:04:05") + "Z"
}
