package commands

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/logfields"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output directory holding the built SPA"`
	Debounce time.Duration `name:"debounce" help:"Quiet period before regenerating" default:"300ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := w.load(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	shellPath, err := filepath.Abs(cfg.Output.ShellPath())
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(shellPath)); err != nil {
		return err
	}
	targets := map[string]bool{shellPath: true}
	if cfgPath, err := filepath.Abs(root.Config); err == nil {
		if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
			slog.Warn("Config directory not watched", logfields.Path(cfgPath), logfields.Error(err))
		} else {
			targets[cfgPath] = true
		}
	}

	regenerate := func(ctx context.Context) {
		cfg, err := w.load(root)
		if err != nil {
			slog.Warn("Config reload failed, skipping regeneration", logfields.Error(err))
			return
		}
		_, err = RunGenerate(ctx, cfg, os.Stdout)
		var exit *ExitError
		switch {
		case stdErrors.As(err, &exit):
			slog.Warn("Regeneration finished without full success", slog.Int("exit_code", exit.Code))
		case err != nil:
			slog.Error("Regeneration failed", logfields.Error(err))
		}
	}

	slog.Info("Watching for changes", logfields.Path(shellPath))
	regenerate(ctx)
	return watchLoop(ctx, watcher.Events, watcher.Errors, targets, w.Debounce, regenerate)
}

func (w *WatchCmd) load(root *CLI) (*config.Config, error) {
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if w.Output != "" {
		cfg.Output.Dir = w.Output
	}
	return cfg, nil
}

// watchLoop calls regenerate once events on targets have been quiet for
// debounce. Regeneration runs on the loop goroutine so runs never overlap.
// Writes into the output tree itself (pages, sitemap) are not targets.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	targets map[string]bool, debounce time.Duration, regenerate func(context.Context),
) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			fire = time.After(debounce)
		case <-fire:
			fire = nil
			regenerate(ctx)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}
