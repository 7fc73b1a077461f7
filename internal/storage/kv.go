// kv.go - Key/value store abstraction for sessions and rate-limit windows

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("storage: key not found")

// Buckets used by the bot
const (
	BucketSessions   = "sessions"
	BucketRateLimits = "rate_limits"
)

// KVStore is a bucketed byte store with last-write-wins semantics
type KVStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	Close() error
}

// GetJSON decodes the value at bucket/key into out
func GetJSON(ctx context.Context, store KVStore, bucket, key string, out interface{}) error {
	raw, err := store.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PutJSON encodes value and stores it at bucket/key
func PutJSON(ctx context.Context, store KVStore, bucket, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", bucket, key, err)
	}
	return store.Put(ctx, bucket, key, raw)
}
