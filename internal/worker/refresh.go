// Package worker hosts the background loops: periodic holdings refresh
// and scheduled overlap reports.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// StaleRefresher re-fetches stored holdings past their freshness window.
type StaleRefresher interface {
	RefreshStale(ctx context.Context) error
}

// RefreshWorker periodically refreshes stale fund holdings.
type RefreshWorker struct {
	refresher StaleRefresher
	interval  time.Duration
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(refresher StaleRefresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run starts the refresh worker loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting")

	// Refresh immediately on startup
	if err := w.refresher.RefreshStale(ctx); err != nil {
		slog.Error("RefreshWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("RefreshWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.refresher.RefreshStale(ctx); err != nil {
				slog.Error("RefreshWorker: refresh failed", "error", err)
			} else {
				slog.Info("RefreshWorker: refresh completed")
			}
		}
	}
}
