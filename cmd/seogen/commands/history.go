package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/eventstore"
	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to list" default:"10"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	return RunHistory(context.Background(), cfg, h.Limit, os.Stdout)
}

// RunHistory prints the most recent finished runs, newest first.
func RunHistory(ctx context.Context, cfg *config.Config, limit int, stdout io.Writer) error {
	if cfg.History.DB == "" {
		return errors.ConfigError("history.db is not configured").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.DB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	events, err := store.Recent(ctx, eventstore.TypeRunFinished, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		_, _ = fmt.Fprintln(stdout, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FINISHED\tRUN\tOUTCOME\tPAGES\tFAILED\tDURATION")
	for _, e := range events {
		rf, err := eventstore.DecodeRunFinished(e)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.Timestamp().Local().Format(time.DateTime), e.RunID(), rf.Outcome, rf.Total, rf.Failures, rf.Duration())
	}
	return tw.Flush()
}
