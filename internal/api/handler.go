// Package api exposes the overlap service over HTTP. The handlers
// validate and resolve fund symbols before the engine runs; the engine
// itself never reaches into the store or the provider.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/fundlab/overlap/internal/domain"
	"github.com/fundlab/overlap/internal/export"
	"github.com/fundlab/overlap/internal/holdings"
	"github.com/fundlab/overlap/internal/overlap"
)

// HoldingsResolver resolves fund symbols to holdings sets.
type HoldingsResolver interface {
	Resolve(ctx context.Context, symbols []string) (map[string]domain.HoldingsSet, error)
	Get(ctx context.Context, symbol string) (domain.FundHoldings, error)
}

// Refresher force-refreshes stored fund holdings.
type Refresher interface {
	ListKnown(ctx context.Context) ([]string, error)
	Refresh(ctx context.Context, symbol string) error
}

// Handler provides the overlap computation endpoints.
type Handler struct {
	resolver HoldingsResolver
}

// NewHandler creates a new API handler.
func NewHandler(resolver HoldingsResolver) *Handler {
	return &Handler{resolver: resolver}
}

// parseFundsParam splits, trims, uppercases and de-duplicates the funds
// query parameter, preserving first-seen order.
func parseFundsParam(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return lo.Uniq(symbols)
}

// computeOverlap runs validation, resolution and the matrix build for the
// funds named in the request. Shared by the JSON and xlsx endpoints.
func (h *Handler) computeOverlap(w http.ResponseWriter, r *http.Request) (domain.MatrixResult, bool) {
	symbols := parseFundsParam(r.URL.Query().Get("funds"))
	if len(symbols) < 2 {
		writeError(w, http.StatusBadRequest, "at least two distinct fund symbols are required")
		return domain.MatrixResult{}, false
	}

	byFund, err := h.resolver.Resolve(r.Context(), symbols)
	if err != nil {
		if errors.Is(err, holdings.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return domain.MatrixResult{}, false
		}
		slog.Error("failed to resolve holdings", "funds", symbols, "error", err)
		writeError(w, http.StatusBadGateway, "failed to resolve fund holdings")
		return domain.MatrixResult{}, false
	}

	result, err := overlap.BuildMatrix(symbols, byFund)
	if err != nil {
		// Resolution guarantees presence; reaching this is a server bug.
		slog.Error("overlap computation rejected resolved input", "funds", symbols, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return domain.MatrixResult{}, false
	}

	return result, true
}

// GetOverlap handles GET /api/v1/overlap?funds=VOO,QQQ,SCHD.
func (h *Handler) GetOverlap(w http.ResponseWriter, r *http.Request) {
	result, ok := h.computeOverlap(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportOverlap handles GET /api/v1/overlap/export?funds=..., streaming
// the computation as an xlsx workbook.
func (h *Handler) ExportOverlap(w http.ResponseWriter, r *http.Request) {
	result, ok := h.computeOverlap(w, r)
	if !ok {
		return
	}

	workbook, err := export.BuildWorkbook(result)
	if err != nil {
		slog.Error("failed to build workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("overlap-%s.xlsx", strings.Join(result.ETFs, "-"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := workbook.Write(w); err != nil {
		slog.Warn("failed to write workbook response", "error", err)
	}
}

// GetFund handles GET /api/v1/funds/{symbol}.
func (h *Handler) GetFund(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "fund symbol is required")
		return
	}

	fund, err := h.resolver.Get(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, holdings.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("fund not found: %s", symbol))
			return
		}
		slog.Error("failed to get fund", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, "failed to resolve fund holdings")
		return
	}
	writeJSON(w, http.StatusOK, fund)
}

// RefreshHandler provides the admin refresh endpoint.
type RefreshHandler struct {
	refresher Refresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(refresher Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

// RefreshFunds handles POST /api/v1/funds/refresh, force-fetching every
// stored fund. Failures are collected, not short-circuited.
func (h *RefreshHandler) RefreshFunds(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.refresher.ListKnown(r.Context())
	if err != nil {
		slog.Error("failed to list funds for refresh", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var failed []string
	for _, symbol := range symbols {
		if err := h.refresher.Refresh(r.Context(), symbol); err != nil {
			slog.Error("failed to refresh fund", "symbol", symbol, "error", err)
			failed = append(failed, symbol)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed": len(symbols) - len(failed),
		"failed":    failed,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
