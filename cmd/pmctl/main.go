// Command pmctl is a command-line client for the project-management API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pmtool/pmctl/internal/app"
	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/infrastructure/apiclient"
	"github.com/pmtool/pmctl/internal/infrastructure/config"
	"github.com/pmtool/pmctl/pkg/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage(w io.Writer) {
	fmt.Fprint(w, `pmctl: project-management API client
Usage:
  pmctl [-api URL] [-log-level L] [-json] <command> [args]

Commands:
  version
  login    -email E -password P|-
  signup   -username U -email E -password P|- [-role R]
  logout
  whoami
  status
  users    list | get -id ID | profile | create ... | update -id ID ... | delete -id ID
  projects list | get -id ID | create ... | update -id ID ... | delete -id ID
           | add-member -id ID -user U | remove-member -id ID -user U
  tasks    list [-project P -status S -assignee U -priority P] | get -id ID
           | create ... | update -id ID ... | status -id ID -to S
           | comment -id ID -text T | delete -id ID
  reports  dashboard | by-status | overdue | workload
  stories  generate -description D [-project P] [-create-tasks] | list -project P
`)
}

// command runs one top-level command against a ready application.
type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"login":    cmdLogin,
	"signup":   cmdSignup,
	"logout":   cmdLogout,
	"whoami":   cmdWhoami,
	"status":   cmdStatus,
	"users":    group("users", usersCommands),
	"projects": group("projects", projectsCommands),
	"tasks":    group("tasks", tasksCommands),
	"reports":  group("reports", reportsCommands),
	"stories":  group("stories", storiesCommands),
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 on failure and 2 on a usage error.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pmctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	apiURL := fs.String("api", "", "API base URL (overrides PMCTL_API_URL)")
	level := fs.String("log-level", "", "trace, debug, info, warn or error (overrides PMCTL_LOG_LEVEL)")
	jsonOut := fs.Bool("json", false, "print JSON instead of tables")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		usage(stderr)
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]

	switch name {
	case "version":
		fmt.Fprintf(stdout, "pmctl %s (%s)\n", version, buildDate)
		return 0
	case "help":
		usage(stdout)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr)
		return 2
	}

	cfg, err := config.LoadWithOverrides(ctx, map[string]string{
		"PMCTL_API_URL":   *apiURL,
		"PMCTL_LOG_LEVEL": *level,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, config.ErrInvalid) {
			return 2
		}
		return 1
	}

	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: stderr})

	c := &cli{in: stdin, out: stdout, errOut: stderr, json: *jsonOut, color: colorEnabled(stdout)}
	a, err := app.New(ctx, app.Options{
		Config:    cfg,
		Navigator: apiclient.NavigatorFunc(c.toLogin),
		Log:       log,
		Version:   version,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	c.app = a
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	if err := cmd(ctx, c, rest); err != nil {
		return c.fail(err)
	}
	return 0
}

var (
	errUsage       = errors.New("see `pmctl help`")
	errNotLoggedIn = errors.New("not logged in: run `pmctl login`")
	// errReported marks failures whose message has already been printed.
	errReported = errors.New("reported")
)

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, errUsage)...)
}

// group dispatches "<name> <sub> [args]" to one of subs.
func group(name string, subs map[string]command) command {
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) == 0 {
			return usageErrorf("%s: missing subcommand", name)
		}
		sub, ok := subs[args[0]]
		if !ok {
			return usageErrorf("%s: unknown subcommand %q", name, args[0])
		}
		return sub(ctx, c, args[1:])
	}
}

// toLogin is the navigation target of the unauthorized policy. The session
// has already been cleared.
func (c *cli) toLogin(_ context.Context, cause *domain.APIError) {
	if cause != nil && cause.Kind == domain.KindAuthorizationExpired {
		fmt.Fprintln(c.errOut, "session expired: run `pmctl login`")
	}
}

func (c *cli) fail(err error) int {
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(c.errOut, "error:", err)
		return 2
	case errors.Is(err, errReported), errors.Is(err, domain.ErrAuthorizationExpired):
		return 1
	}
	fmt.Fprintln(c.errOut, "error:", message(err))
	return 1
}

// message prefers the server-provided text for gateway errors.
func message(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return domain.UserMessage(err)
	}
	return err.Error()
}
