package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
	"github.com/kirillkom/loan-workbench/internal/observability/logging"
)

const workerService = "worker"

type refreshObserver interface {
	StartRefresh()
	FinishRefresh(service, action string, duration time.Duration, err error)
	ObserveEventLag(service string, lag time.Duration)
	ObserveMissing(service string, missing int)
}

// NewEventHandler returns the subscriber callback that rebuilds a loan's
// checklist snapshot for each event. Invalid events are logged and dropped;
// other failures are returned to the subscriber.
func NewEventHandler(
	logger *slog.Logger,
	refresher ports.ChecklistRefresher,
	observer refreshObserver,
	timeout time.Duration,
) func(context.Context, domain.LoanEvent) error {
	return func(ctx context.Context, event domain.LoanEvent) error {
		log := logging.ForEvent(logger, event)
		start := time.Now()
		if !event.OccurredAt.IsZero() {
			observer.ObserveEventLag(workerService, start.Sub(event.OccurredAt))
		}

		refreshCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		observer.StartRefresh()
		snapshot, err := refresher.Refresh(refreshCtx, event)
		observer.FinishRefresh(workerService, string(event.Action), time.Since(start), err)
		if err != nil {
			if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrLoanNotFound) {
				log.Warn("checklist_refresh_skipped", "error", err)
				return nil
			}
			log.Error("checklist_refresh_failed", "error", err)
			return err
		}

		observer.ObserveMissing(workerService, snapshot.Summary.MissingCount)
		log.Info("checklist_refreshed",
			"missing", snapshot.Summary.MissingCount,
			"progress_percent", snapshot.Summary.ProgressPercent,
			"dscr_band", string(snapshot.DSCRBand),
		)
		return nil
	}
}
