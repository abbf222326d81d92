package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmtool/pmctl/internal/api"
	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/infrastructure/config"
	"github.com/pmtool/pmctl/internal/infrastructure/storage"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/filekv"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.Load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)
	return cfg
}

type navCount struct{ causes []*domain.APIError }

func (n *navCount) ToLogin(_ context.Context, cause *domain.APIError) {
	n.causes = append(n.causes, cause)
}

func TestNew_LoginThenCall(t *testing.T) {
	fx := api.NewFixture()
	defer fx.Close()

	ctx := context.Background()
	a, err := New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_API_URL":         fx.URL(),
			"PMCTL_SESSION_BACKEND": "memory",
		}),
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	snap := a.Session.Snapshot()
	require.False(t, snap.Loading)
	require.False(t, snap.Authenticated())

	require.NoError(t, a.Session.Login(ctx, domain.Credentials{Email: "manager@example.com", Password: api.DemoPassword}))
	require.Equal(t, domain.RoleManager, a.Session.Identity().Role)

	_, err = a.API.Projects.List(ctx)
	require.NoError(t, err)
}

func TestNew_RestoresFileSessionAndTearsDownOn401(t *testing.T) {
	fx := api.NewFixture()
	defer fx.Close()

	dir := t.TempDir()
	ctx := context.Background()
	persisted := storage.NewSessionStorage(filekv.New(dir))
	require.NoError(t, persisted.Save(ctx, domain.PersistedSession{
		Token:    fx.Token(domain.RoleDeveloper, -time.Minute),
		Identity: fx.Identity(domain.RoleDeveloper),
	}))

	nav := &navCount{}
	a, err := New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_API_URL":     fx.URL(),
			"PMCTL_SESSION_DIR": dir,
		}),
		Navigator: nav,
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	require.True(t, a.Session.Snapshot().Authenticated(), "bootstrap adopts the stored session without asking the server")

	_, err = a.API.Tasks.List(ctx, domain.TaskFilter{})
	require.ErrorIs(t, err, domain.ErrAuthorizationExpired)

	require.Len(t, nav.causes, 1)
	assert.Equal(t, "Signature expired. Please log in again.", nav.causes[0].Message)
	assert.False(t, a.Session.Snapshot().Authenticated())

	_, err = persisted.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNoStoredSession)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Options{})
	require.Error(t, err)

	_, err = New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_SESSION_BACKEND": "redis",
			"PMCTL_REDIS_ADDR":      "127.0.0.1:1",
		}),
		Log: zerolog.Nop(),
	})
	require.Error(t, err)
}

func TestReadiness(t *testing.T) {
	fx := api.NewFixture()
	ctx := context.Background()

	a, err := New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_API_URL":         fx.URL(),
			"PMCTL_SESSION_BACKEND": "memory",
		}),
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	r := a.Readiness(ctx)
	require.True(t, r.OK(), "%+v", r)
	require.Equal(t, "ok", r.Dependencies["api"].Status)
	require.Equal(t, "ok", r.Dependencies["session_storage"].Status)

	fx.Close()
	r = a.Readiness(ctx)
	require.False(t, r.OK())
	require.Equal(t, "degraded", r.Status)
	require.Equal(t, "unhealthy", r.Dependencies["api"].Status)
	require.NotEmpty(t, r.Dependencies["api"].Error)
}

func TestClose_WritesMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmctl.prom")
	ctx := context.Background()

	a, err := New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_SESSION_BACKEND":  "memory",
			"PMCTL_METRICS_TEXTFILE": path,
		}),
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "pmctl_session_events_total")
}

func TestClose_ReportsMetricsError(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, Options{
		Config: testConfig(t, map[string]string{
			"PMCTL_SESSION_BACKEND":  "memory",
			"PMCTL_METRICS_TEXTFILE": filepath.Join(t.TempDir(), "missing", "dir", "m.prom"),
		}),
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	err = a.Close(ctx)
	require.Error(t, err)
	require.False(t, errors.Is(err, context.Canceled))
}
