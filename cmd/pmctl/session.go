package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/service"
)

// identity returns the logged-in user or errNotLoggedIn. It never calls the API.
func (c *cli) identity() (*domain.Identity, error) {
	id := c.app.Session.Identity()
	if id == nil {
		return nil, errNotLoggedIn
	}
	return id, nil
}

func forbidden(id *domain.Identity, action string) error {
	return fmt.Errorf("%w: %s users cannot %s", domain.ErrForbidden, id.Role, action)
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, or - to read it from stdin")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return usageErrorf("login: need -email and -password")
	}
	pw, err := c.secret(*password)
	if err != nil {
		return err
	}

	if err := c.app.Session.Login(ctx, domain.Credentials{Email: *email, Password: pw}); err != nil {
		return err
	}
	id := c.app.Session.Identity()
	if c.json {
		return c.printJSON(id)
	}
	_, err = fmt.Fprintf(c.out, "logged in as %s (%s)\n", id.Username, c.paint(string(id.Role), id.Role.Tone()))
	return err
}

func cmdSignup(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("signup")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, or - to read it from stdin")
	role := fs.String("role", string(domain.RoleDeveloper), "Admin, Manager, Developer, Designer or Tester")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *username == "" || *email == "" || *password == "" {
		return usageErrorf("signup: need -username, -email and -password")
	}
	if !domain.Role(*role).Valid() {
		return usageErrorf("signup: unknown role %q", *role)
	}
	pw, err := c.secret(*password)
	if err != nil {
		return err
	}

	ack, err := c.app.API.Auth.Signup(ctx, domain.SignupRequest{
		Username: *username,
		Email:    *email,
		Password: pw,
		Role:     domain.Role(*role),
	})
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func cmdLogout(ctx context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("logout"), args); err != nil {
		return err
	}
	c.app.Session.Logout(ctx)
	_, err := fmt.Fprintln(c.out, "logged out")
	return err
}

type whoami struct {
	domain.Identity
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func cmdWhoami(_ context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("whoami"), args); err != nil {
		return err
	}
	id, err := c.identity()
	if err != nil {
		return err
	}
	out := whoami{Identity: *id}
	expiry := "unknown"
	if exp, ok := service.TokenExpiry(c.app.Session.Token()); ok {
		out.ExpiresAt = &exp
		expiry = exp.Local().Format(time.RFC1123)
		if time.Now().After(exp) {
			expiry += " (expired)"
		}
	}
	if c.json {
		return c.printJSON(out)
	}
	return c.fields(
		"ID", id.ID,
		"Username", id.Username,
		"Email", id.Email,
		"Role", c.paint(string(id.Role), id.Role.Tone()),
		"Token expires", expiry,
	)
}

var errDegraded = errors.New("one or more dependencies are unhealthy")

func cmdStatus(ctx context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("status"), args); err != nil {
		return err
	}
	report := c.app.Readiness(ctx)
	if c.json {
		if err := c.printJSON(report); err != nil {
			return err
		}
	} else {
		session := "not logged in"
		if id := c.app.Session.Identity(); id != nil {
			session = fmt.Sprintf("%s (%s)", id.Email, id.Role)
		}
		tone := domain.ToneSuccess
		if !report.OK() {
			tone = domain.ToneError
		}
		if err := c.fields(
			"API", report.API,
			"Status", c.paint(report.Status, tone),
			"Session", session,
			"Backend", c.app.Config.Session.Backend,
		); err != nil {
			return err
		}
		names := make([]string, 0, len(report.Dependencies))
		for name := range report.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			d := report.Dependencies[name]
			rows = append(rows, []string{name, d.Status, orDash(d.Error)})
		}
		fmt.Fprintln(c.out)
		if err := c.table([]string{"DEPENDENCY", "STATUS", "ERROR"}, rows); err != nil {
			return err
		}
	}
	if !report.OK() {
		return errDegraded
	}
	return nil
}
