package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// Runs against a live server only when PMCTL_REDIS_ADDR is set.
func TestKV_RoundTrip(t *testing.T) {
	addr := os.Getenv("PMCTL_REDIS_ADDR")
	if addr == "" {
		t.Skip("PMCTL_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr, Timeout: 2 * time.Second})
	require.NoError(t, err)

	kv := NewKV(client, "pmctl-test:"+uuid.NewString())
	t.Cleanup(func() {
		_ = kv.Delete(ctx, "token", "user")
		_ = kv.Close()
	})

	_, err = kv.Get(ctx, "token")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "token", "abc"))
	v, err := kv.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "abc", v)

	require.NoError(t, kv.SetMany(ctx, map[string]string{"token": "def", "user": `{"_id":"u1"}`}))
	got, err := kv.GetMany(ctx, "token", "user", "missing")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"token": "def", "user": `{"_id":"u1"}`}, got)

	require.NoError(t, kv.Delete(ctx, "token", "user"))
	_, err = kv.Get(ctx, "token")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
	require.NoError(t, kv.Ping(ctx))
}

func TestKV_KeyPrefix(t *testing.T) {
	require.Equal(t, "pmctl:session:token", (&KV{prefix: "pmctl:session"}).key("token"))
	require.Equal(t, "token", (&KV{}).key("token"))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
}
