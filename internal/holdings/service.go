// Package holdings resolves fund holdings through a three-level chain:
// in-process TTL cache, persistent store, upstream provider. The overlap
// engine itself never touches any of these; it receives resolved sets.
package holdings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fundlab/overlap/internal/domain"
	"github.com/fundlab/overlap/internal/provider"
)

// Fetcher retrieves fund holdings from the upstream provider.
type Fetcher interface {
	FetchHoldings(ctx context.Context, symbol string) (domain.FundHoldings, error)
}

// Service resolves fund holdings, keeping the persistent store and the
// in-process cache warm as a side effect of resolution.
type Service struct {
	repo      Repository
	fetcher   Fetcher
	cache     *fundCache
	freshness time.Duration
}

// NewService creates a holdings resolution service. Stored holdings older
// than the freshness window are re-fetched on access.
func NewService(repo Repository, fetcher Fetcher, freshness time.Duration) *Service {
	return &Service{
		repo:      repo,
		fetcher:   fetcher,
		cache:     newFundCache(freshness),
		freshness: freshness,
	}
}

// Resolve returns the holdings of every requested fund, keyed by symbol.
// A fund unknown to both the store and the provider surfaces ErrNotFound
// wrapping the symbol, so callers can reject the request before any
// overlap computation runs.
func (s *Service) Resolve(ctx context.Context, symbols []string) (map[string]domain.HoldingsSet, error) {
	resolved := make(map[string]domain.HoldingsSet, len(symbols))
	for _, symbol := range symbols {
		fund, err := s.resolveOne(ctx, symbol)
		if err != nil {
			return nil, err
		}
		resolved[symbol] = fund.Holdings
	}
	return resolved, nil
}

// Get returns one fund's holdings with its metadata.
func (s *Service) Get(ctx context.Context, symbol string) (domain.FundHoldings, error) {
	return s.resolveOne(ctx, symbol)
}

func (s *Service) resolveOne(ctx context.Context, symbol string) (domain.FundHoldings, error) {
	if fund, ok := s.cache.get(symbol); ok {
		return fund, nil
	}

	stored, err := s.repo.Get(ctx, symbol)
	if err == nil && time.Since(stored.FetchedAt) < s.freshness {
		fund := domain.FundHoldings{Symbol: stored.Symbol, Name: stored.Name, Holdings: stored.Holdings}
		s.cache.set(symbol, fund)
		return fund, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.FundHoldings{}, fmt.Errorf("reading stored holdings for %s: %w", symbol, err)
	}

	fund, fetchErr := s.fetcher.FetchHoldings(ctx, symbol)
	if fetchErr != nil {
		if errors.Is(fetchErr, provider.ErrUnknownFund) {
			return domain.FundHoldings{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		// Stale data beats no data when the upstream is unavailable.
		if stored != nil {
			slog.Warn("refresh failed, serving stale holdings", "symbol", symbol, "error", fetchErr)
			fund := domain.FundHoldings{Symbol: stored.Symbol, Name: stored.Name, Holdings: stored.Holdings}
			s.cache.set(symbol, fund)
			return fund, nil
		}
		return domain.FundHoldings{}, fmt.Errorf("fetching holdings for %s: %w", symbol, fetchErr)
	}

	if err := s.repo.Save(ctx, fund, time.Now()); err != nil {
		slog.Warn("failed to persist fetched holdings", "symbol", symbol, "error", err)
	}
	s.cache.set(symbol, fund)
	return fund, nil
}

// RefreshStale re-fetches every stored fund older than the freshness
// window. Failures are logged per fund and do not abort the pass.
func (s *Service) RefreshStale(ctx context.Context) error {
	stale, err := s.repo.ListStale(ctx, time.Now().Add(-s.freshness))
	if err != nil {
		return fmt.Errorf("listing stale funds: %w", err)
	}

	var failed int
	for _, symbol := range stale {
		if err := s.Refresh(ctx, symbol); err != nil {
			slog.Error("failed to refresh holdings", "symbol", symbol, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("refreshing holdings: %d of %d funds failed", failed, len(stale))
	}
	return nil
}

// Refresh force-fetches one fund from the provider, bypassing freshness.
func (s *Service) Refresh(ctx context.Context, symbol string) error {
	fund, err := s.fetcher.FetchHoldings(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetching holdings for %s: %w", symbol, err)
	}
	if err := s.repo.Save(ctx, fund, time.Now()); err != nil {
		return fmt.Errorf("saving holdings for %s: %w", symbol, err)
	}
	s.cache.invalidate(symbol)
	return nil
}

// ListKnown returns the symbols of all stored funds.
func (s *Service) ListKnown(ctx context.Context) ([]string, error) {
	return s.repo.ListSymbols(ctx)
}
