package main

import (
	"context"

	"github.com/pmtool/pmctl/internal/core/domain"
)

var usersCommands = map[string]command{
	"list":    usersList,
	"get":     usersGet,
	"profile": usersProfile,
	"create":  usersCreate,
	"update":  usersUpdate,
	"delete":  usersDelete,
}

// requireAdmin gates every user-management command except profile.
func (c *cli) requireAdmin(action string) (*domain.Identity, error) {
	id, err := c.identity()
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		return nil, forbidden(id, action)
	}
	return id, nil
}

func (c *cli) printUsers(users []domain.User) error {
	if c.json {
		return c.printJSON(users)
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Username, u.Email, c.paint(string(u.Role), u.Role.Tone()), orDash(u.CreatedAt.DateString())})
	}
	return c.table([]string{"ID", "USERNAME", "EMAIL", "ROLE", "CREATED"}, rows)
}

func (c *cli) printUser(u *domain.User) error {
	if c.json {
		return c.printJSON(u)
	}
	return c.fields(
		"ID", u.ID,
		"Username", u.Username,
		"Email", u.Email,
		"Role", c.paint(string(u.Role), u.Role.Tone()),
		"Created", orDash(u.CreatedAt.DateString()),
	)
}

func usersList(ctx context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("users list"), args); err != nil {
		return err
	}
	if _, err := c.requireAdmin("manage users"); err != nil {
		return err
	}
	users, err := c.app.API.Users.List(ctx)
	if err != nil {
		return err
	}
	return c.printUsers(users)
}

func usersGet(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("users get")
	id := fs.String("id", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("users get: need -id")
	}
	if _, err := c.requireAdmin("manage users"); err != nil {
		return err
	}
	u, err := c.app.API.Users.Get(ctx, *id)
	if err != nil {
		return err
	}
	return c.printUser(u)
}

func usersProfile(ctx context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("users profile"), args); err != nil {
		return err
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	u, err := c.app.API.Users.Profile(ctx)
	if err != nil {
		return err
	}
	return c.printUser(u)
}

func usersCreate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("users create")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, or - to read it from stdin")
	role := fs.String("role", string(domain.RoleDeveloper), "role")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *username == "" || *email == "" || *password == "" {
		return usageErrorf("users create: need -username, -email and -password")
	}
	if !domain.Role(*role).Valid() {
		return usageErrorf("users create: unknown role %q", *role)
	}
	if _, err := c.requireAdmin("manage users"); err != nil {
		return err
	}
	pw, err := c.secret(*password)
	if err != nil {
		return err
	}
	ack, err := c.app.API.Users.Create(ctx, domain.CreateUserRequest{
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

func usersUpdate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("users update")
	id := fs.String("id", "", "user id")
	username := fs.String("username", "", "new display name")
	email := fs.String("email", "", "new email")
	role := fs.String("role", "", "new role")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("users update: need -id")
	}
	if *role != "" && !domain.Role(*role).Valid() {
		return usageErrorf("users update: unknown role %q", *role)
	}
	if _, err := c.requireAdmin("manage users"); err != nil {
		return err
	}
	ack, err := c.app.API.Users.Update(ctx, *id, domain.UpdateUserRequest{
		Username: *username,
		Email:    *email,
		Role:     domain.Role(*role),
	})
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func usersDelete(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("users delete")
	id := fs.String("id", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("users delete: need -id")
	}
	me, err := c.requireAdmin("manage users")
	if err != nil {
		return err
	}
	if !me.CanDeleteUser(*id) {
		return forbidden(me, "delete their own account")
	}
	ack, err := c.app.API.Users.Delete(ctx, *id)
	if err != nil {
		return err
	}
	return c.ack(ack)
}
