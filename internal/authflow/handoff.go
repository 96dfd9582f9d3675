package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/foodhub/internal/storage"
)

// ErrNoPendingAuth means no sign-in preceded the OTP screen.
var ErrNoPendingAuth = errors.New("no pending authentication")

// HandoffStore keeps pending records in the tab-scoped slot, one per role
// and hand-off token.
type HandoffStore struct {
	store storage.Store
}

func NewHandoffStore(store storage.Store) *HandoffStore {
	return &HandoffStore{store: store}
}

func pendingKey(role Role, token string) string {
	return fmt.Sprintf("pending-auth:%s:%s", role, token)
}

// Put writes rec under token, replacing any earlier hand-off for that token.
func (h *HandoffStore) Put(ctx context.Context, token string, rec PendingAuthRecord) error {
	if token == "" {
		return ErrNoPendingAuth
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode pending auth: %w", err)
	}
	return h.store.Set(ctx, pendingKey(rec.Role, token), data)
}

// Get returns the pending record for role and token or ErrNoPendingAuth.
func (h *HandoffStore) Get(ctx context.Context, role Role, token string) (PendingAuthRecord, error) {
	if token == "" {
		return PendingAuthRecord{}, ErrNoPendingAuth
	}
	data, err := h.store.Get(ctx, pendingKey(role, token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return PendingAuthRecord{}, ErrNoPendingAuth
		}
		return PendingAuthRecord{}, err
	}

	var rec PendingAuthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PendingAuthRecord{}, fmt.Errorf("decode pending auth: %w", err)
	}
	if rec.Role != role {
		return PendingAuthRecord{}, ErrNoPendingAuth
	}
	return rec, nil
}

func (h *HandoffStore) Delete(ctx context.Context, role Role, token string) error {
	return h.store.Delete(ctx, pendingKey(role, token))
}
