package shielded

import (
	"context"
	"sync"
	"time"

	"umbra/internal/storage"
	"umbra/pkg/errors"
)

const nullifierKeyPrefix = "nullifier:"

type spentRecord struct {
	SpentAt time.Time `json:"spentAt"`
}

// NullifierRegistry remembers spent nullifiers. A nullifier seen twice is a
// double-spend.
type NullifierRegistry struct {
	mu    sync.Mutex
	store storage.Store
	now   func() time.Time
}

func NewNullifierRegistry(store storage.Store) *NullifierRegistry {
	return &NullifierRegistry{store: store, now: time.Now}
}

func (r *NullifierRegistry) IsSpent(ctx context.Context, nullifier string) (bool, error) {
	return r.store.HasKey(ctx, nullifierKeyPrefix+nullifier)
}

// MarkSpent records nullifier, failing with DOUBLE_SPEND if it is already
// recorded. The check and write are serialised within this process only.
func (r *NullifierRegistry) MarkSpent(ctx context.Context, nullifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spent, err := r.IsSpent(ctx, nullifier)
	if err != nil {
		return err
	}
	if spent {
		return errors.Newf(errors.CodeDoubleSpend, "nullifier %s already spent", nullifier)
	}
	return storage.SetJSON(ctx, r.store, nullifierKeyPrefix+nullifier, spentRecord{SpentAt: r.now().UTC()})
}

// SpentAt returns when nullifier was recorded.
func (r *NullifierRegistry) SpentAt(ctx context.Context, nullifier string) (time.Time, error) {
	var rec spentRecord
	if err := storage.GetJSON(ctx, r.store, nullifierKeyPrefix+nullifier, &rec); err != nil {
		return time.Time{}, err
	}
	return rec.SpentAt, nil
}
