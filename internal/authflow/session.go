package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/foodhub/internal/storage"
	"github.com/example/foodhub/internal/utils"
)

// ErrNoSession is returned when the durable session slot is empty.
var ErrNoSession = errors.New("no authenticated session")

// SessionStore keeps authenticated sessions in the durable slot.
type SessionStore struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

func NewSessionStore(store storage.Store) *SessionStore {
	return &SessionStore{store: store, now: time.Now, newID: utils.NewSessionID}
}

func sessionKey(role Role, id string) string {
	return fmt.Sprintf("auth-session:%s:%s", role, id)
}

// Commit derives a session record from a verified pending record and
// persists it.
func (s *SessionStore) Commit(ctx context.Context, pending PendingAuthRecord) (AuthenticatedSessionRecord, error) {
	name := pending.DisplayName
	if name == "" {
		name = pending.Role.DefaultDisplayName()
	}
	rec := AuthenticatedSessionRecord{
		ID:          s.newID(),
		Contact:     pending.Contact,
		DisplayName: name,
		Role:        pending.Role,
		CreatedAt:   s.now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return AuthenticatedSessionRecord{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(rec.Role, rec.ID), data); err != nil {
		return AuthenticatedSessionRecord{}, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

func (s *SessionStore) Get(ctx context.Context, role Role, id string) (AuthenticatedSessionRecord, error) {
	data, err := s.store.Get(ctx, sessionKey(role, id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AuthenticatedSessionRecord{}, ErrNoSession
		}
		return AuthenticatedSessionRecord{}, err
	}

	var rec AuthenticatedSessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return AuthenticatedSessionRecord{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, role Role, id string) error {
	return s.store.Delete(ctx, sessionKey(role, id))
}
