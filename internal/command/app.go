// Package command wires the dasida command line: flags, logging, session
// resolution and output rendering.
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/storage"
)

// Opener builds an object store for a session.
type Opener func(ctx context.Context, sess config.Session) (interfaces.ObjectStore, error)

type runner struct {
	stdout  io.Writer
	stderr  io.Writer
	open    Opener
	logger  *slog.Logger
	profile string
}

// Option customizes the application.
type Option func(*runner)

// WithOpener replaces storage.Open, mostly for tests.
func WithOpener(open Opener) Option {
	return func(r *runner) { r.open = open }
}

// NewApp builds the dasida application writing results to stdout and logs to stderr.
func NewApp(stdout, stderr io.Writer, opts ...Option) *cli.App {
	r := &runner{
		stdout: stdout,
		stderr: stderr,
		open:   storage.Open,
	}
	for _, opt := range opts {
		opt(r)
	}

	return &cli.App{
		Name:      "dasida",
		Usage:     "List and bulk-delete bucket objects by prefix and pattern",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the configuration file",
				Value:   config.DefaultPath,
				EnvVars: []string{"DASIDA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "Provider ID from the configuration file",
				EnvVars: []string{"DASIDA_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "AWS Profile Name.",
				EnvVars: []string{"AWS_PROFILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "SQLite file recording deletions (overrides journalPath)",
				EnvVars: []string{"DASIDA_JOURNAL"},
			},
		},
		Before: r.before,
		Commands: []*cli.Command{
			r.listObjectsCommand(),
			r.deleteObjectsCommand(),
			r.historyCommand(),
			r.envCommand(),
			r.configCommand(),
		},
	}
}

func (r *runner) before(c *cli.Context) error {
	r.profile = c.String("profile")
	return r.setLogLevel(c.String("log-level"))
}

// commandBefore applies --profile and --log-level given after the command
// name. They take precedence over the app-level values.
func (r *runner) commandBefore(c *cli.Context) error {
	local := c.LocalFlagNames()
	if slices.Contains(local, "profile") {
		r.profile = c.String("profile")
	}
	if slices.Contains(local, "log-level") {
		return r.setLogLevel(c.String("log-level"))
	}
	return nil
}

func (r *runner) setLogLevel(name string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}

	r.logger = slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// settings is what a command needs from the global flags and the config file.
type settings struct {
	session     config.Session
	journalPath string
}

func (r *runner) resolve(c *cli.Context) (settings, error) {
	cfg, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return settings{}, fmt.Errorf("error loading configuration: %w", err)
	}

	var s settings
	switch {
	case cfg == nil && c.IsSet("config"):
		return settings{}, fmt.Errorf("configuration file %s not found", c.String("config"))
	case cfg != nil:
		s.session, err = cfg.Session(c.String("provider"))
		if err != nil {
			return settings{}, err
		}
		s.journalPath = cfg.JournalPath
	case c.String("provider") == "" || c.String("provider") == string(config.AWS):
		s.session = config.DefaultSession()
	default:
		return settings{}, fmt.Errorf("provider %s requires a configuration file", c.String("provider"))
	}

	s.session = s.session.WithProfile(r.profile)
	if journal := c.String("journal"); journal != "" {
		s.journalPath = journal
	}

	r.logger.Debug("Resolved session", "provider_id", s.session.ProviderID, "provider_type", s.session.Provider, "journal", s.journalPath)
	return s, nil
}
