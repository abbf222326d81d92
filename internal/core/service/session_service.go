package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
	"github.com/pmtool/pmctl/internal/infrastructure/metrics"
)

// SessionService owns who is logged in. Login, Logout and Bootstrap are the
// only writers; any number of goroutines may call Snapshot and Token.
type SessionService struct {
	auth    ports.AuthGateway
	storage ports.SessionStorage
	log     zerolog.Logger

	// writeMu serialises the commit step of the writers so that storage and
	// memory change together.
	writeMu sync.Mutex

	mu       sync.RWMutex
	token    string
	identity *domain.Identity
	loading  bool

	bootOnce sync.Once
}

func NewSessionService(auth ports.AuthGateway, storage ports.SessionStorage, log zerolog.Logger) *SessionService {
	return &SessionService{
		auth:    auth,
		storage: storage,
		log:     log,
		loading: true,
	}
}

// Bootstrap adopts a previously persisted session without contacting the
// server. Missing or malformed entries leave the session empty. Only the first
// call has any effect; Loading is false once it returns.
func (s *SessionService) Bootstrap(ctx context.Context) {
	s.bootOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		persisted, err := s.storage.Load(ctx)
		switch {
		case err == nil:
			identity := persisted.Identity
			s.set(persisted.Token, &identity)
			metrics.SessionEventsTotal.WithLabelValues("restored").Inc()
			s.log.Debug().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session restored")
		case errors.Is(err, domain.ErrNoStoredSession):
			metrics.SessionEventsTotal.WithLabelValues("empty").Inc()
			s.log.Debug().Msg("no stored session")
		default:
			metrics.SessionEventsTotal.WithLabelValues("discarded").Inc()
			s.log.Warn().Err(err).Msg("discarding stored session")
			if errors.Is(err, domain.ErrMalformedSession) {
				if cerr := s.storage.Clear(ctx); cerr != nil {
					s.log.Warn().Err(cerr).Msg("clear malformed session")
				}
			}
		}

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
}

// Login exchanges credentials for a token. On success the session is
// persisted and then adopted; on failure the session is left as it was and
// the gateway error is returned untouched.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) error {
	s.log.Debug().Str("email", creds.Email).Msg("login attempt")

	// The request runs outside writeMu: a 401 teardown may call Logout.
	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		s.log.Info().Err(err).Str("email", creds.Email).Msg("login failed")
		return err
	}
	if res == nil || res.Token == "" {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return fmt.Errorf("%w: login response has no access token", domain.ErrRequestFailed)
	}
	if err := domain.Validate(res.Identity); err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return fmt.Errorf("%w: login response user: %v", domain.ErrRequestFailed, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.Save(ctx, domain.PersistedSession{Token: res.Token, Identity: res.Identity}); err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		s.log.Error().Err(err).Msg("persist session")
		// Save may have written one entry before failing.
		if cerr := s.storage.Clear(ctx); cerr != nil {
			s.log.Warn().Err(cerr).Msg("clear partial session")
		}
		return fmt.Errorf("persist session: %w", err)
	}

	identity := res.Identity
	s.set(res.Token, &identity)
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("logged in")
	return nil
}

// Logout clears the session in memory and in storage. It never fails; a
// storage error is logged.
func (s *SessionService) Logout(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear stored session")
	}
	s.set("", nil)
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	s.log.Debug().Msg("logged out")
}

// Snapshot returns a copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Session{Token: s.token, Loading: s.loading}
	if s.identity != nil {
		identity := *s.identity
		out.Identity = &identity
	}
	return out
}

// Token implements ports.TokenSource.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the logged-in user, or nil.
func (s *SessionService) Identity() *domain.Identity {
	return s.Snapshot().Identity
}

func (s *SessionService) set(token string, identity *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = identity
}
