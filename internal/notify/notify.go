// Package notify delivers import summaries to whoever watches the school's
// operational channel. Delivery is fire and forget: the commit path never
// waits on, or fails because of, a notification.
package notify

import (
	"context"
	"log/slog"

	"github.com/escolaplus/importer/internal/importer"
)

// ConsoleNotifier logs the summary. It is the default sink in development
// and a sensible fallback when no messaging integration is configured.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) BatchCommitted(ctx context.Context, summary importer.CommitSummary) {
	logger := slog.With(
		"batch", summary.BatchID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	logger.Info("import batch committed")

	for _, o := range summary.Outcomes {
		if !o.Success {
			logger.Warn("row failed", "row", o.RowIndex, "name", o.Name, "error", o.Error)
		}
	}
}
