// Package notify tells external systems about freshly generated pages.
//
// Notification is best effort: failures are logged and never change the
// outcome of a generation run.
package notify

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/seogen/internal/logfields"
)

// Summary describes a finished run.
type Summary struct {
	RunID  string         `json:"run_id"`
	URLs   []string       `json:"urls"`
	Counts map[string]int `json:"counts"`
}

// Notifier delivers a run summary somewhere.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, s Summary) error
}

// Dispatch sends s to every notifier. Errors are logged and counted.
func Dispatch(ctx context.Context, logger *slog.Logger, notifiers []Notifier, s Summary) int {
	if logger == nil {
		logger = slog.Default()
	}
	failed := 0
	for _, n := range notifiers {
		if err := n.Notify(ctx, s); err != nil {
			failed++
			logger.Warn("Notification failed",
				slog.String("notifier", n.Name()),
				logfields.RunID(s.RunID),
				logfields.Error(err))
			continue
		}
		logger.Info("Notification sent",
			slog.String("notifier", n.Name()),
			logfields.RunID(s.RunID),
			logfields.Count(len(s.URLs)))
	}
	return failed
}
