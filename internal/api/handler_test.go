package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundlab/overlap/internal/domain"
	"github.com/fundlab/overlap/internal/holdings"
)

type mockResolver struct {
	funds map[string]domain.FundHoldings
}

func newMockResolver() *mockResolver {
	return &mockResolver{funds: map[string]domain.FundHoldings{
		"AAA": {Symbol: "AAA", Name: "Fund AAA", Holdings: domain.HoldingsSet{
			{Symbol: "AAPL", Name: "Apple Inc", Weight: 10.0},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 8.0},
			{Symbol: "GOOG", Name: "Alphabet", Weight: 5.0},
		}},
		"BBB": {Symbol: "BBB", Name: "Fund BBB", Holdings: domain.HoldingsSet{
			{Symbol: "AAPL", Name: "Apple Inc", Weight: 6.0},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 9.0},
			{Symbol: "AMZN", Name: "Amazon", Weight: 4.0},
		}},
	}}
}

func (m *mockResolver) Resolve(_ context.Context, symbols []string) (map[string]domain.HoldingsSet, error) {
	byFund := make(map[string]domain.HoldingsSet, len(symbols))
	for _, s := range symbols {
		fund, ok := m.funds[s]
		if !ok {
			return nil, fmt.Errorf("%w: %s", holdings.ErrNotFound, s)
		}
		byFund[s] = fund.Holdings
	}
	return byFund, nil
}

func (m *mockResolver) Get(_ context.Context, symbol string) (domain.FundHoldings, error) {
	fund, ok := m.funds[symbol]
	if !ok {
		return domain.FundHoldings{}, fmt.Errorf("%w: %s", holdings.ErrNotFound, symbol)
	}
	return fund, nil
}

func TestGetOverlapSuccess(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overlap?funds=AAA,BBB", nil)
	w := httptest.NewRecorder()
	handler.GetOverlap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var result domain.MatrixResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if len(result.ETFs) != 2 || result.ETFs[0] != "AAA" || result.ETFs[1] != "BBB" {
		t.Errorf("etfs = %v, want [AAA BBB]", result.ETFs)
	}
	if result.Matrix[0][1] != 14 || result.Matrix[1][0] != 14 {
		t.Errorf("off-diagonal = (%v, %v), want 14", result.Matrix[0][1], result.Matrix[1][0])
	}
	if result.Matrix[0][0] != 100 || result.Matrix[1][1] != 100 {
		t.Errorf("diagonal = (%v, %v), want 100", result.Matrix[0][0], result.Matrix[1][1])
	}
	if _, ok := result.Details["AAA-BBB"]; !ok {
		t.Error("missing AAA-BBB detail")
	}
	if _, ok := result.Details["BBB-AAA"]; !ok {
		t.Error("missing BBB-AAA detail")
	}
	if result.CoreOverlap.TotalSharedHoldings != 2 {
		t.Errorf("core shared = %d, want 2", result.CoreOverlap.TotalSharedHoldings)
	}
}

func TestGetOverlapNormalizesSymbols(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overlap?funds=+aaa+,bbb,AAA", nil)
	w := httptest.NewRecorder()
	handler.GetOverlap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var result domain.MatrixResult
	json.NewDecoder(w.Body).Decode(&result)
	if len(result.ETFs) != 2 {
		t.Errorf("etfs = %v, want duplicates removed", result.ETFs)
	}
}

func TestGetOverlapTooFewFunds(t *testing.T) {
	handler := NewHandler(newMockResolver())

	for _, query := range []string{"", "funds=AAA", "funds=AAA,aaa"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/overlap?"+query, nil)
		w := httptest.NewRecorder()
		handler.GetOverlap(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, w.Code)
		}
	}
}

func TestGetOverlapUnknownFund(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overlap?funds=AAA,NOPE", nil)
	w := httptest.NewRecorder()
	handler.GetOverlap(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestExportOverlapContentType(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overlap/export?funds=AAA,BBB", nil)
	w := httptest.NewRecorder()
	handler.ExportOverlap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestGetFund(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/funds/aaa", nil)
	req.SetPathValue("symbol", "aaa")
	w := httptest.NewRecorder()
	handler.GetFund(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var fund domain.FundHoldings
	json.NewDecoder(w.Body).Decode(&fund)
	if fund.Symbol != "AAA" || len(fund.Holdings) != 3 {
		t.Errorf("fund = %+v", fund)
	}
}

func TestGetFundNotFound(t *testing.T) {
	handler := NewHandler(newMockResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/funds/NOPE", nil)
	req.SetPathValue("symbol", "NOPE")
	w := httptest.NewRecorder()
	handler.GetFund(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

type mockRefresher struct {
	known     []string
	refreshed []string
}

func (m *mockRefresher) ListKnown(_ context.Context) ([]string, error) {
	return m.known, nil
}

func (m *mockRefresher) Refresh(_ context.Context, symbol string) error {
	m.refreshed = append(m.refreshed, symbol)
	return nil
}

func TestRefreshFunds(t *testing.T) {
	refresher := &mockRefresher{known: []string{"AAA", "BBB"}}
	handler := NewRefreshHandler(refresher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funds/refresh", nil)
	w := httptest.NewRecorder()
	handler.RefreshFunds(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(refresher.refreshed) != 2 {
		t.Errorf("refreshed = %v, want both funds", refresher.refreshed)
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := requireAuth("secret", next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funds/refresh", nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/funds/refresh", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/funds/refresh", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}
