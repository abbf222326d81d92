// Package storage persists the client session on top of a ports.KeyValueStore.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
)

// Entry names, shared by every backend.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// SessionStorage keeps the bearer token and the serialized identity as two
// separate entries, always written and removed together.
type SessionStorage struct {
	kv ports.KeyValueStore
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

func NewSessionStorage(kv ports.KeyValueStore) *SessionStorage {
	return &SessionStorage{kv: kv}
}

func (s *SessionStorage) Load(ctx context.Context) (*domain.PersistedSession, error) {
	entries, err := s.kv.GetMany(ctx, TokenKey, UserKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, hasToken := entries[TokenKey]
	user, hasUser := entries[UserKey]
	switch {
	case !hasToken && !hasUser:
		return nil, domain.ErrNoStoredSession
	case !hasToken || !hasUser:
		return nil, fmt.Errorf("%w: only one of token and user is stored", domain.ErrMalformedSession)
	case token == "":
		return nil, fmt.Errorf("%w: empty token", domain.ErrMalformedSession)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(user), &identity); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", domain.ErrMalformedSession, err)
	}
	if err := domain.Validate(identity); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	return &domain.PersistedSession{Token: token, Identity: identity}, nil
}

// Save writes both entries in a single store operation.
func (s *SessionStorage) Save(ctx context.Context, session domain.PersistedSession) error {
	if session.Token == "" {
		return fmt.Errorf("save session: empty token")
	}
	user, err := json.Marshal(session.Identity)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	entries := map[string]string{TokenKey: session.Token, UserKey: string(user)}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping reports whether the backend is reachable, for readiness checks.
func (s *SessionStorage) Ping(ctx context.Context) error {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err := s.kv.Get(ctx, TokenKey)
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return err
	}
	return nil
}
