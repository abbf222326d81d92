package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func post(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newEcho()
	st := store.New()
	h := NewAuthHandler(st, "secret", 0)

	c, rec := post(e, "/api/auth/signup", `{"username":"alice","email":"alice@example.com","password":"secret1","role":"Designer"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	users := st.Users()
	if len(users) != 1 || users[0].Role != domain.RoleDesigner || users[0].Username != "alice" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	e := newEcho()
	st := store.New()
	if _, err := st.AddUser(domain.User{Username: "bob", Email: "bob@example.com"}, "pw1234"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewAuthHandler(st, "secret", 0)

	c, _ := post(e, "/api/auth/signup", `{"username":"bob","email":"bob@example.com","password":"secret1"}`)
	if err := h.Signup(c); err != store.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Signup_Invalid(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(store.New(), "secret", 0)

	c, _ := post(e, "/api/auth/signup", `{"username":"bob","email":"not-an-email","password":"x","role":"Owner"}`)
	err := h.Signup(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	msg, _ := he.Message.(string)
	for _, want := range []string{"email must be a valid email", "password must be at least 6", "role must be one of"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	st := store.New()
	seeded, err := st.AddUser(domain.User{Username: "carol", Email: "carol@example.com", Role: domain.RoleManager}, "pw1234")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewAuthHandler(st, "secret", 0)

	c, rec := post(e, "/api/auth/login", `{"email":"carol@example.com","password":"pw1234"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp domain.AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Identity.ID != seeded.ID || resp.Identity.Role != domain.RoleManager {
		t.Fatalf("unexpected user payload: %+v", resp.Identity)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != seeded.ID || claims["role"] != "Manager" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	e := newEcho()
	st := store.New()
	if _, err := st.AddUser(domain.User{Username: "dan", Email: "dan@example.com"}, "right-pw"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewAuthHandler(st, "secret", 0)

	c, _ := post(e, "/api/auth/login", `{"email":"dan@example.com","password":"wrong"}`)
	if err := h.Login(c); err != store.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
