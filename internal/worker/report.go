package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/fundlab/overlap/internal/domain"
	"github.com/fundlab/overlap/internal/overlap"
)

// WatchlistResolver resolves the holdings of the watched funds.
type WatchlistResolver interface {
	Resolve(ctx context.Context, symbols []string) (map[string]domain.HoldingsSet, error)
}

// ReportSink receives each computed watchlist overlap result.
type ReportSink interface {
	Export(ctx context.Context, result domain.MatrixResult) error
}

// ReportWorker periodically computes the overlap matrix for a configured
// watchlist and hands the result to a sink.
type ReportWorker struct {
	resolver  WatchlistResolver
	sink      ReportSink
	watchlist []string
	interval  time.Duration
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(resolver WatchlistResolver, sink ReportSink, watchlist []string, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		resolver:  resolver,
		sink:      sink,
		watchlist: watchlist,
		interval:  interval,
	}
}

func (w *ReportWorker) report(ctx context.Context) error {
	byFund, err := w.resolver.Resolve(ctx, w.watchlist)
	if err != nil {
		return err
	}
	result, err := overlap.BuildMatrix(w.watchlist, byFund)
	if err != nil {
		return err
	}
	return w.sink.Export(ctx, result)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "watchlist", w.watchlist)

	// Report immediately on startup
	if err := w.report(ctx); err != nil {
		slog.Error("ReportWorker: initial report failed", "error", err)
	} else {
		slog.Info("ReportWorker: initial report completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.report(ctx); err != nil {
				slog.Error("ReportWorker: report failed", "error", err)
			} else {
				slog.Info("ReportWorker: report completed")
			}
		}
	}
}
