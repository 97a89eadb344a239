package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/eventstore"
	"git.home.luguber.info/inful/seogen/internal/logfields"
	"git.home.luguber.info/inful/seogen/internal/metrics"
	"git.home.luguber.info/inful/seogen/internal/notify"
	"git.home.luguber.info/inful/seogen/internal/pipeline"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Output      string `short:"o" help:"Output directory holding the built SPA"`
	Shell       string `name:"shell" help:"Shell document (defaults to <output>/index.html)"`
	Concurrency int    `name:"concurrency" help:"Pages rendered in parallel"`
	Report      string `name:"report" help:"Write the JSON run report to this path"`
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	g.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunGenerate(ctx, cfg, os.Stdout)
	return err
}

// apply lets flags win over file and environment.
func (g *GenerateCmd) apply(cfg *config.Config) {
	if g.Output != "" {
		cfg.Output.Dir = g.Output
	}
	if g.Shell != "" {
		cfg.Output.Shell = g.Shell
	}
	if g.Concurrency != 0 {
		cfg.Generation.Concurrency = g.Concurrency
	}
	if g.Report != "" {
		cfg.Output.Report = g.Report
	}
}

// RunGenerate wires the optional collaborators named in cfg, runs one
// generation and prints the report to stdout. A run that completed but did not
// succeed returns an *ExitError with the report's exit code. Extra options are
// applied last.
func RunGenerate(ctx context.Context, cfg *config.Config, stdout io.Writer, opts ...pipeline.Option) (*pipeline.Report, error) {
	d, err := openDeps(cfg)
	if err != nil {
		return nil, err
	}
	defer d.close()

	gen := pipeline.New(cfg, append(d.opts, opts...)...)
	report, runErr := gen.Run(ctx)
	if report != nil {
		if err := report.WriteText(stdout); err != nil {
			slog.Warn("Failed to print report", logfields.Error(err))
		}
	}
	if runErr != nil {
		return report, runErr
	}
	if code := report.ExitCode(); code != 0 {
		return report, &ExitError{Code: code}
	}
	return report, nil
}

// deps are the optional run collaborators and their cleanup.
type deps struct {
	opts    []pipeline.Option
	closers []io.Closer
}

func openDeps(cfg *config.Config) (*deps, error) {
	logger := slog.Default()
	d := &deps{opts: []pipeline.Option{pipeline.WithLogger(logger)}}

	if cfg.Metrics.Textfile != "" {
		d.opts = append(d.opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(nil)))
	}

	if cfg.History.DB != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.DB)
		if err != nil {
			return nil, err
		}
		d.opts = append(d.opts, pipeline.WithHistory(store))
		d.closers = append(d.closers, store)
	}

	var notifiers []notify.Notifier
	if in := cfg.Notify.IndexNow; in.Enabled() {
		notifiers = append(notifiers, notify.NewIndexNow(in.Endpoint, cfg.Site.Domain, in.Key))
	}
	if nc := cfg.Notify.NATS; nc.Enabled() {
		subject := nc.Subject
		if subject == "" {
			subject = config.DefaultNATSSubject
		}
		n, err := notify.NewNATS(nc.URL, subject)
		if err != nil {
			// notifications are best effort
			logger.Warn("NATS notifier disabled", logfields.Error(err))
		} else {
			notifiers = append(notifiers, n)
			d.closers = append(d.closers, n)
		}
	}
	if len(notifiers) > 0 {
		d.opts = append(d.opts, pipeline.WithNotifiers(notifiers...))
	}
	return d, nil
}

func (d *deps) close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close resource", logfields.Error(err))
		}
	}
}
