// Package provider fetches fund constituent data from the upstream
// holdings API and normalizes it into domain types.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fundlab/overlap/internal/domain"
)

// ErrUnknownFund indicates the upstream API has no data for the symbol.
var ErrUnknownFund = errors.New("unknown fund")

// Client is an HTTP client for the holdings API with retry on 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new holdings API client.
func NewClient(baseURL string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// get performs a GET request with exponential backoff retry on 429.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusNotFound:
			return nil, ErrUnknownFund
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", url, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		default:
			return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
		}
	}

	return nil, lastErr
}

// getJSON performs a GET request and unmarshals the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", path, err)
	}
	return nil
}

// FetchHoldings retrieves and normalizes the holdings of one fund.
// Symbols are uppercased and duplicates resolved first-wins before the
// data crosses into domain types.
func (c *Client) FetchHoldings(ctx context.Context, symbol string) (domain.FundHoldings, error) {
	path := fmt.Sprintf("/v1/funds/%s/holdings", url.PathEscape(strings.ToUpper(symbol)))

	var resp fundHoldingsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		if errors.Is(err, ErrUnknownFund) {
			return domain.FundHoldings{}, fmt.Errorf("%w: %s", ErrUnknownFund, symbol)
		}
		return domain.FundHoldings{}, fmt.Errorf("fetching holdings for %s: %w", symbol, err)
	}

	holdings := lo.Map(resp.Holdings, func(h holdingRecord, _ int) domain.Holding {
		name := strings.TrimSpace(h.Name)
		sym := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if name == "" {
			name = sym
		}
		return domain.Holding{
			Symbol: sym,
			Name:   name,
			Weight: domain.ParseWeight(h.Weight),
			Shares: h.Shares,
		}
	})

	return domain.FundHoldings{
		Symbol:   strings.ToUpper(symbol),
		Name:     resp.Name,
		Holdings: domain.HoldingsSet(holdings).Normalize(),
	}, nil
}
