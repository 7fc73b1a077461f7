// user_window.go - Per-user rolling message window stored in the KV store

package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/storage"
)

// Timestamps older than the retention are pruned on every check
const windowRetention = time.Hour

type userWindow struct {
	Timestamps []time.Time `json:"timestamps"`
}

// UserLimiter allows at most Max messages per Window for each user
type UserLimiter struct {
	store  storage.KVStore
	Max    int
	Window time.Duration
	now    func() time.Time
}

// NewUserLimiter creates a limiter of maxPerMinute messages per minute
func NewUserLimiter(store storage.KVStore, maxPerMinute int) *UserLimiter {
	return &UserLimiter{store: store, Max: maxPerMinute, Window: time.Minute, now: time.Now}
}

// Allow records the message and reports whether it is within the limit.
// A rejected message is not recorded. Store failures allow the message.
func (l *UserLimiter) Allow(ctx context.Context, userID string) bool {
	now := l.now()

	var w userWindow
	err := storage.GetJSON(ctx, l.store, storage.BucketRateLimits, userID, &w)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		common.Logger().Warn("rate limit read failed, allowing message", zap.String("user_id", userID), zap.Error(err))
		return true
	}

	cutoff := now.Add(-windowRetention)
	windowStart := now.Add(-l.Window)
	kept := w.Timestamps[:0]
	recent := 0
	for _, ts := range w.Timestamps {
		if !ts.After(cutoff) {
			continue
		}
		kept = append(kept, ts)
		if ts.After(windowStart) {
			recent++
		}
	}

	if recent >= l.Max {
		return false
	}

	w.Timestamps = append(kept, now)
	if err := storage.PutJSON(ctx, l.store, storage.BucketRateLimits, userID, w); err != nil {
		common.Logger().Warn("rate limit write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return true
}
