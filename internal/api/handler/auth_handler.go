package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

type AuthHandler struct {
	store     *store.Store
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthHandler(st *store.Store, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{store: st, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

type signupRequest struct {
	Username string      `json:"username" validate:"required"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=Admin Manager Developer Designer Tester"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"access_token"`
	User  domain.User `json:"user"`
}

// Signup creates a new user account.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := h.store.AddUser(domain.User{Username: req.Username, Email: req.Email, Role: req.Role}, req.Password); err != nil {
		return err
	}
	return message(c, http.StatusCreated, "User created successfully")
}

// Login authenticates a user and returns a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.generateToken(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) generateToken(user domain.User) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(h.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
