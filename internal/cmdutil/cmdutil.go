// Package cmdutil holds the flags and setup shared by the command-line tools.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jamesainslie/go-adapt/internal/config"
	"github.com/jamesainslie/go-adapt/internal/logging"
)

// UI contains the output streams of a tool. Tests inject buffers.
type UI struct {
	Out io.Writer
	Err io.Writer
}

// Env is populated by Before and shared by every command of a tool.
type Env struct {
	UI         UI
	Logger     *slog.Logger
	Experiment *config.Experiment
}

// GlobalFlags returns the flags every tool accepts.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "experiment file (HCL)",
			EnvVars: []string{"ADAPT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log level: " + strings.Join(logging.Levels, ", "),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log format: " + strings.Join(logging.Formats, ", "),
		},
	}
}

// Before builds the logger and loads the experiment file, if any. Logs go to
// the error stream so that command output stays clean.
func (e *Env) Before(c *cli.Context) error {
	logger, err := logging.New(c.String("log-level"), c.String("log-format"), e.UI.Err)
	if err != nil {
		return err
	}
	e.Logger = logger

	e.Experiment = &config.Experiment{}
	if path := c.Path("config"); path != "" {
		exp, err := config.Load(path)
		if err != nil {
			return err
		}
		e.Experiment = exp
		logger.Debug("loaded experiment", "path", path, "corpora", len(exp.Corpora))
	}
	return nil
}

// Main runs app with args under a context cancelled by an interrupt and
// returns the process exit code. Errors are printed as "<tool>: <error>".
func Main(app *cli.App, args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, args); err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", app.Name, err)
		return 1
	}
	return 0
}

// String returns the flag value when set on the command line, otherwise
// fallback.
func String(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) || fallback == "" {
		return c.String(name)
	}
	return fallback
}

// Int returns the flag value when set on the command line, otherwise
// fallback when it is non-zero.
func Int(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) || fallback == 0 {
		return c.Int(name)
	}
	return fallback
}

// Required reports a missing value for flag name.
func Required(name string) error {
	return fmt.Errorf("missing required flag --%s", name)
}
