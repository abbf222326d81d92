package api

import (
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/pmtool/pmctl/internal/api/handler"
	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

var demoUsers = []domain.User{
	{ID: "demo-admin", Username: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin},
	{ID: "demo-manager", Username: "Manager User", Email: "manager@example.com", Role: domain.RoleManager},
	{ID: "demo-developer", Username: "Developer User", Email: "dev@example.com", Role: domain.RoleDeveloper},
	{ID: "demo-designer", Username: "Designer User", Email: "designer@example.com", Role: domain.RoleDesigner},
	{ID: "demo-tester", Username: "Tester User", Email: "tester@example.com", Role: domain.RoleTester},
}

// Fixture is a running fake server seeded with one user per role.
type Fixture struct {
	Server *httptest.Server
	Store  *store.Store
	Secret string
	Users  map[domain.Role]domain.User
}

// NewFixture starts a server on a loopback port. Call Close when done.
func NewFixture() *Fixture {
	st := store.New()
	users := make(map[domain.Role]domain.User, len(demoUsers))
	for _, u := range demoUsers {
		seeded, err := st.AddUser(u, DemoPassword)
		if err != nil {
			panic(err)
		}
		users[u.Role] = seeded
	}

	const secret = "fixture-secret"
	e := NewRouter(Config{
		Store:     st,
		JWTSecret: secret,
		Stories:   handler.SentenceStories,
		Log:       zerolog.Nop(),
	})
	return &Fixture{
		Server: httptest.NewServer(e),
		Store:  st,
		Secret: secret,
		Users:  users,
	}
}

// URL is the server's base address.
func (f *Fixture) URL() string { return f.Server.URL }

func (f *Fixture) Close() { f.Server.Close() }

// Token signs a token for the seeded user with role, valid for ttl from now.
// A negative ttl yields an expired token.
func (f *Fixture) Token(role domain.Role, ttl time.Duration) string {
	u := f.Users[role]
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}).SignedString([]byte(f.Secret))
	if err != nil {
		panic(err)
	}
	return signed
}

// Identity returns the seeded user with role as a session identity.
func (f *Fixture) Identity(role domain.Role) domain.Identity {
	u := f.Users[role]
	return domain.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
