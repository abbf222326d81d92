package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:5000", cfg.API.URL)
	require.Zero(t, cfg.API.Timeout)
	require.Equal(t, "warn", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty)
	require.Equal(t, BackendFile, cfg.Session.Backend)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "pmctl:session", cfg.Redis.Prefix)
	require.False(t, cfg.Redis.Enabled)
	require.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PMCTL_API_URL":         "https://pm.example.com",
		"PMCTL_API_TIMEOUT":     "15s",
		"PMCTL_LOG_LEVEL":       "debug",
		"PMCTL_SESSION_BACKEND": "redis",
		"PMCTL_REDIS_DB":        "3",
		"PMCTL_OTLP_ENDPOINT":   "http://localhost:4318",
	}))
	require.NoError(t, err)

	require.Equal(t, "https://pm.example.com", cfg.API.URL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad backend": {"PMCTL_SESSION_BACKEND": "sqlite"},
		"bad level":   {"PMCTL_LOG_LEVEL": "loud"},
		"bad url":     {"PMCTL_API_URL": "localhost:5000"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), envconfig.MapLookuper(env))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{"PMCTL_API_TIMEOUT": "soon"}))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalid)
}

func TestLoadWithOverrides_OverridesWinOverInvalidEnv(t *testing.T) {
	t.Setenv("PMCTL_API_URL", "localhost:5000")
	t.Setenv("PMCTL_LOG_LEVEL", "loud")

	_, err := LoadWithOverrides(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalid)

	cfg, err := LoadWithOverrides(context.Background(), map[string]string{
		"PMCTL_API_URL":   "http://127.0.0.1:5000",
		"PMCTL_LOG_LEVEL": "debug",
	})
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:5000", cfg.API.URL)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWithOverrides_EmptyOverrideKeepsEnv(t *testing.T) {
	t.Setenv("PMCTL_API_URL", "https://pm.example.com")

	cfg, err := LoadWithOverrides(context.Background(), map[string]string{"PMCTL_API_URL": ""})
	require.NoError(t, err)
	require.Equal(t, "https://pm.example.com", cfg.API.URL)
}
