// cli is a small command-line client for the daily-logger API.
//
//	cli signin -email you@example.com -password secret
//	cli sleep list
//	cli sleep add -start 2024-03-09T22:30:00Z -end 2024-03-10T06:45:00Z
//	cli tasks list
//	cli logout
//
// The session (cookies and account) is kept in ~/.daily-logger/session.json, or DAILY_LOGGER_SESSION.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"daily-logger/internal/client"
	"daily-logger/internal/config"
	"daily-logger/internal/logger"
)

const usage = `usage: cli [-api URL] [-v] <command>

commands:
  signin -email E -password P
  sleep list
  sleep add -start T -end T
  tasks list
  logout
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", cfg.APIBaseURL, "API base URL")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	zlog, err := logger.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	path, err := sessionPath()
	if err != nil {
		return err
	}
	store := newFileStore(path)
	c, err := client.New(*apiURL, client.Options{
		Store:     store,
		Navigator: &terminalNavigator{out: stderr},
		Log:       zlog,
	})
	if err != nil {
		return err
	}
	if err := store.load(c); err != nil {
		zlog.Warn("ignoring unreadable session file", zap.String("path", path), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmdErr := dispatch(ctx, c, fs.Args(), stdout, stderr)
	if err := store.save(c); err != nil {
		zlog.Warn("could not save session", zap.String("path", path), zap.Error(err))
	}
	return cmdErr
}

func dispatch(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signin":
		return signin(ctx, c, rest, stdout, stderr)
	case "logout":
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Logged out.")
		return nil
	case "sleep":
		if len(rest) == 0 {
			return errors.New("sleep: expected list or add")
		}
		switch rest[0] {
		case "list":
			return sleepList(ctx, c, stdout)
		case "add":
			return sleepAdd(ctx, c, rest[1:], stdout, stderr)
		}
		return fmt.Errorf("sleep: unknown subcommand %q", rest[0])
	case "tasks":
		if len(rest) == 0 || rest[0] != "list" {
			return errors.New("tasks: expected list")
		}
		return tasksList(ctx, c, stdout)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func signin(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := c.Signin(ctx, *email, *password)
	if err != nil {
		return err
	}
	name := a.FullName
	if name == "" {
		name = a.Username
	}
	fmt.Fprintf(stdout, "Signed in as %s <%s>.\n", name, a.Email)
	return nil
}

func sleepList(ctx context.Context, c *client.Client, stdout io.Writer) error {
	sessions, err := c.ListSleep(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tHOURS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", s.ID, s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339), s.EndTime.Sub(s.StartTime).Hours())
	}
	return tw.Flush()
}

func sleepAdd(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sleep add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	start := fs.String("start", "", "bedtime (RFC 3339)")
	end := fs.String("end", "", "wake time (RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.CreateSleep(ctx, *start, *end)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Recorded sleep %d: %s to %s.\n", s.ID, s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339))
	return nil
}

func tasksList(ctx context.Context, c *client.Client, stdout io.Writer) error {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDUE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Status, t.DueDate, t.Title)
	}
	return tw.Flush()
}

// terminalNavigator prints notices; "navigating" to sign-in tells the user which command to run.
type terminalNavigator struct {
	out io.Writer
}

func (n *terminalNavigator) Path() string { return "/" }

func (n *terminalNavigator) Navigate(path string) {
	if path == client.SignInPath {
		fmt.Fprintln(n.out, "Run `cli signin -email ... -password ...` to continue.")
	}
}

func (n *terminalNavigator) Notify(msg string) { fmt.Fprintln(n.out, msg) }
