package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/pmtool/pmctl/internal/app"
	"github.com/pmtool/pmctl/internal/core/domain"
)

type cli struct {
	app    *app.App
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	json   bool
	color  bool
}

// colorEnabled is true for terminals unless NO_COLOR is set.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var toneCodes = map[domain.Tone]string{
	domain.TonePrimary:   "34",
	domain.ToneSecondary: "35",
	domain.ToneInfo:      "36",
	domain.ToneSuccess:   "32",
	domain.ToneWarning:   "33",
	domain.ToneError:     "31",
}

// paint renders label in the color of tone.
func (c *cli) paint(label string, tone domain.Tone) string {
	code, ok := toneCodes[tone]
	if !c.color || !ok || label == "" {
		return label
	}
	return "\x1b[" + code + "m" + label + "\x1b[0m"
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows under header, tab-aligned.
func (c *cli) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// fields prints label/value pairs, one per line.
func (c *cli) fields(pairs ...string) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], pairs[i+1])
	}
	return tw.Flush()
}

// ack prints the confirmation message of a mutation.
func (c *cli) ack(a *domain.Ack) error {
	if c.json {
		return c.printJSON(a)
	}
	msg := "ok"
	if a != nil && a.Message != "" {
		msg = a.Message
	}
	_, err := fmt.Fprintln(c.out, msg)
	return err
}

// newFlags returns a flag set that reports errors instead of exiting.
func (c *cli) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), errUsage)
	}
	if fs.NArg() > 0 {
		return usageErrorf("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return nil
}

// secret returns v, or the first line of stdin when v is "-".
func (c *cli) secret(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
