package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
)

// ExpirySweeper periodically expires store credits that are past their expiry date.
type ExpirySweeper struct {
	credits  portssvc.StoreCreditWriterSvc
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

// NewExpirySweeper creates a sweeper. An interval of zero disables it.
func NewExpirySweeper(credits portssvc.StoreCreditWriterSvc, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirySweeper{
		credits:  credits,
		interval: interval,
		clock:    time.Now,
		logger:   logger.With(slog.String("component", "expiry_sweeper")),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
// Sweep failures are logged; Run itself only returns when ctx ends.
func (w *ExpirySweeper) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("Store credit expiry sweep disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Store credit expiry sweep started", slog.Duration("interval", w.interval))
	for {
		w.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("Store credit expiry sweep stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// SweepOnce expires every credit due at the current time and reports how many it expired.
func (w *ExpirySweeper) SweepOnce(ctx context.Context) int {
	expired, err := w.credits.ExpireDueStoreCredits(ctx, w.clock().UTC())
	if err != nil {
		w.logger.Error("Store credit expiry sweep failed", slog.String("error", err.Error()), slog.Int("expired", expired))
	}
	return expired
}
