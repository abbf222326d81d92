package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/filekv"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/memkv"
)

func alice() domain.Identity {
	return domain.Identity{ID: "u1", Username: "alice", Email: "alice@example.com", Role: domain.RoleDeveloper}
}

func TestSessionStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStorage(filekv.New(t.TempDir()))

	require.NoError(t, s.Save(ctx, domain.PersistedSession{Token: "t1", Identity: alice()}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "t1", got.Token)
	require.Equal(t, alice().ID, got.Identity.ID)
	require.Equal(t, domain.RoleDeveloper, got.Identity.Role)
}

func TestSessionStorage_LoadEmpty(t *testing.T) {
	_, err := NewSessionStorage(memkv.New()).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrNoStoredSession)
}

func TestSessionStorage_LoadPartial(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	require.NoError(t, kv.Set(ctx, TokenKey, "t1"))

	_, err := NewSessionStorage(kv).Load(ctx)
	require.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestSessionStorage_LoadUndecodableUser(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	require.NoError(t, kv.Set(ctx, TokenKey, "t1"))
	require.NoError(t, kv.Set(ctx, UserKey, "{not json"))

	_, err := NewSessionStorage(kv).Load(ctx)
	require.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestSessionStorage_LoadIdentityMissingRole(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	require.NoError(t, kv.Set(ctx, TokenKey, "t1"))
	require.NoError(t, kv.Set(ctx, UserKey, `{"_id":"u1","email":"a@b.c"}`))

	_, err := NewSessionStorage(kv).Load(ctx)
	require.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestSessionStorage_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	s := NewSessionStorage(kv)

	require.NoError(t, s.Save(ctx, domain.PersistedSession{Token: "t1", Identity: alice()}))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	require.Zero(t, kv.Len())

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, domain.ErrNoStoredSession)
}

func TestSessionStorage_SaveRejectsEmptyToken(t *testing.T) {
	kv := memkv.New()
	err := NewSessionStorage(kv).Save(context.Background(), domain.PersistedSession{Identity: alice()})
	require.Error(t, err)
	require.Zero(t, kv.Len())
}

func TestSessionStorage_Ping(t *testing.T) {
	require.NoError(t, NewSessionStorage(memkv.New()).Ping(context.Background()))
}

// Two stores on one directory behave like two pmctl processes sharing a
// session file: a load racing a save or clear sees all of it or none of it.
func TestSessionStorage_ConcurrentLoadSeesWholeSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writer := NewSessionStorage(filekv.New(dir))
	reader := NewSessionStorage(filekv.New(dir))

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 200; i++ {
			if err := writer.Save(ctx, domain.PersistedSession{Token: "t1", Identity: alice()}); err != nil {
				done <- err
				return
			}
			if err := writer.Clear(ctx); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}
		got, err := reader.Load(ctx)
		if errors.Is(err, domain.ErrNoStoredSession) {
			continue
		}
		require.NoError(t, err)
		require.Equal(t, "t1", got.Token)
		require.Equal(t, alice().ID, got.Identity.ID)
	}
}
