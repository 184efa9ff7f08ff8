package holdings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundlab/overlap/internal/domain"
)

// ErrNotFound indicates that no holdings are stored for the fund.
var ErrNotFound = errors.New("holdings not found")

// StoredFund is a fund holdings record as persisted.
type StoredFund struct {
	Symbol    string             `json:"symbol"`
	Name      string             `json:"name"`
	Holdings  domain.HoldingsSet `json:"holdings"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Repository defines persistent storage for fund holdings.
type Repository interface {
	Save(ctx context.Context, fund domain.FundHoldings, fetchedAt time.Time) error
	Get(ctx context.Context, symbol string) (*StoredFund, error)
	ListSymbols(ctx context.Context) ([]string, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]string, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL holdings repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, fund domain.FundHoldings, fetchedAt time.Time) error {
	data, err := json.Marshal(fund.Holdings)
	if err != nil {
		return fmt.Errorf("marshaling holdings for %s: %w", fund.Symbol, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO fund_holdings (symbol, name, holdings, fetched_at)
		 VALUES ($1, $2, $3::jsonb, $4)
		 ON CONFLICT (symbol)
		 DO UPDATE SET name = $2, holdings = $3::jsonb, fetched_at = $4`,
		fund.Symbol, fund.Name, data, fetchedAt)
	if err != nil {
		return fmt.Errorf("saving holdings for %s: %w", fund.Symbol, err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, symbol string) (*StoredFund, error) {
	var (
		s    StoredFund
		data []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, name, holdings, fetched_at
		 FROM fund_holdings
		 WHERE symbol = $1`, symbol).Scan(&s.Symbol, &s.Name, &data, &s.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting holdings for %s: %w", symbol, err)
	}

	if err := json.Unmarshal(data, &s.Holdings); err != nil {
		return nil, fmt.Errorf("unmarshaling holdings for %s: %w", symbol, err)
	}
	return &s, nil
}

func (r *PgRepository) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol FROM fund_holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("listing fund symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}

func (r *PgRepository) ListStale(ctx context.Context, olderThan time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol FROM fund_holdings
		 WHERE fetched_at < $1
		 ORDER BY fetched_at`, olderThan)
	if err != nil {
		return nil, fmt.Errorf("listing stale funds: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}

func scanSymbols(rows pgx.Rows) ([]string, error) {
	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating symbols: %w", err)
	}
	return symbols, nil
}
