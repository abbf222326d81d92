// Package app wires configuration, session storage, the session service and
// the API gateway into one object the command layer works with.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
	"github.com/pmtool/pmctl/internal/core/service"
	"github.com/pmtool/pmctl/internal/infrastructure/apiclient"
	"github.com/pmtool/pmctl/internal/infrastructure/config"
	redisdb "github.com/pmtool/pmctl/internal/infrastructure/db/redis"
	"github.com/pmtool/pmctl/internal/infrastructure/metrics"
	"github.com/pmtool/pmctl/internal/infrastructure/storage"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/filekv"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/memkv"
	"github.com/pmtool/pmctl/internal/infrastructure/telemetry"
	"github.com/pmtool/pmctl/pkg/logger"
)

type Options struct {
	Config *config.Config
	// Navigator is told when the server rejects the session. The in-memory
	// session is already empty when it runs.
	Navigator apiclient.Navigator
	Log       zerolog.Logger
	Version   string
	// Transport replaces http.DefaultTransport under the gateway.
	Transport http.RoundTripper
}

type App struct {
	Config  *config.Config
	Session *service.SessionService
	API     *apiclient.Client
	Storage *storage.SessionStorage

	log     zerolog.Logger
	closers []func(context.Context) error
}

// New builds the application and restores any persisted session.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("app: nil config")
	}
	cfg := opts.Config
	a := &App{Config: cfg, log: opts.Log}

	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, opts.Version)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	kv, err := a.openKV(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Storage = storage.NewSessionStorage(kv)

	// The gateway reads the token through the session service, which in turn
	// logs in through the gateway.
	var session *service.SessionService
	tokens := ports.TokenSourceFunc(func() string { return session.Token() })

	nav := apiclient.NavigatorFunc(func(ctx context.Context, cause *domain.APIError) {
		session.Logout(ctx)
		if opts.Navigator != nil {
			opts.Navigator.ToLogin(ctx, cause)
		}
	})

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger.Component(opts.Log, "gateway")),
		apiclient.WithUnauthorizedHandler(
			apiclient.NewTeardownPolicy(a.Storage, nav, logger.Component(opts.Log, "teardown")),
		),
	}
	if opts.Transport != nil {
		clientOpts = append(clientOpts, apiclient.WithBaseTransport(opts.Transport))
	}
	client, err := apiclient.New(cfg.API.URL, tokens, clientOpts...)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.API = client

	session = service.NewSessionService(client.Auth, a.Storage, logger.Component(opts.Log, "session"))
	a.Session = session
	session.Bootstrap(ctx)
	return a, nil
}

func (a *App) openKV(ctx context.Context) (ports.KeyValueStore, error) {
	cfg := a.Config
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return memkv.New(), nil
	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("session backend: %w", err)
		}
		kv := redisdb.NewKV(client, cfg.Redis.Prefix)
		a.closers = append(a.closers, func(context.Context) error { return kv.Close() })
		return kv, nil
	default:
		dir := cfg.Session.Dir
		if dir == "" {
			dir = filekv.DefaultDir()
		}
		return filekv.New(dir), nil
	}
}

// Close releases backends, flushes spans and writes the metrics textfile when
// one is configured. Closers run in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Config.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
