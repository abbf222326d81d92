package ports

import (
	"context"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// KeyValueStore is durable client-side string storage.
// Get returns domain.ErrKeyNotFound for a missing key; Delete of a missing
// key is not an error. GetMany, SetMany and Delete each act on all their keys
// at once, so a reader never observes part of a multi-key write.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	// GetMany returns the stored subset of keys. Missing keys are absent.
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionStorage persists the (token, identity) pair.
type SessionStorage interface {
	// Load returns domain.ErrNoStoredSession when nothing is stored and
	// domain.ErrMalformedSession when only part of it is, or it cannot be decoded.
	Load(ctx context.Context) (*domain.PersistedSession, error)
	Save(ctx context.Context, s domain.PersistedSession) error
	// Clear removes both entries. It is idempotent.
	Clear(ctx context.Context) error
}
