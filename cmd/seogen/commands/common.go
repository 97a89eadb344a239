// Package commands holds the seogen subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/seogen/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"seogen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Fetch cities and products and write one page per entity (default)"`
	Verify   VerifyCmd   `cmd:"" help:"Count and sample the pages of an existing output tree"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the shell document or the config file changes"`
	History  HistoryCmd  `cmd:"" help:"List recent runs from the history database"`
}

// AfterApply runs after flag parsing; installs a text logger until the config
// file has been read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(config.LogConfig{}.NewLogger(os.Stderr, c.Verbose))
	return nil
}

// ExitError carries the exit code of a run whose outcome was already printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// LoadConfig reads the config file with its environment overrides and installs
// the configured logger as the default.
func LoadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr, root.Verbose))
	return cfg, nil
}
