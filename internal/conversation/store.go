// store.go - Conversation state persistence over a KV store

package conversation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/storage"
)

// StateStore loads, saves and clears per-user state
type StateStore struct {
	kv storage.KVStore
}

// NewStateStore keeps states in the sessions bucket of kv
func NewStateStore(kv storage.KVStore) *StateStore {
	return &StateStore{kv: kv}
}

// Load returns the stored state, or the entry state when none exists.
// A state that fails validation is discarded and reported as ErrInvalidState.
func (s *StateStore) Load(ctx context.Context, userID string) (State, error) {
	var st State
	err := storage.GetJSON(ctx, s.kv, storage.BucketSessions, userID, &st)
	if errors.Is(err, storage.ErrNotFound) {
		return State{}, nil
	}
	if err == nil {
		err = st.Validate()
	}
	if err != nil {
		common.Logger().Warn("discarding unreadable conversation state",
			zap.String("user_id", userID),
			zap.Error(err))
		if clearErr := s.Clear(ctx, userID); clearErr != nil {
			return State{}, clearErr
		}
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return st, nil
}

// Save replaces the stored state
func (s *StateStore) Save(ctx context.Context, userID string, st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	return storage.PutJSON(ctx, s.kv, storage.BucketSessions, userID, st)
}

// Clear removes the stored state
func (s *StateStore) Clear(ctx context.Context, userID string) error {
	if err := s.kv.Delete(ctx, storage.BucketSessions, userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
