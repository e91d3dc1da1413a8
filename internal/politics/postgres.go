package politics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"InsiderWatch/internal/model"
	"InsiderWatch/internal/observability"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// Numerics are read as text so they land in decimal.Decimal without float rounding.
const tradeColumns = `
	id, politician, party, chamber, ticker, asset_description, transaction_type,
	transaction_date, disclosure_date,
	COALESCE(amount_min::text, ''), COALESCE(amount_max::text, ''), owner`

func (s *PostgresStore) ListTrades(ctx context.Context, f Filter) ([]model.PoliticalTrade, error) {
	f = f.Normalize()

	var (
		where []string
		args  []any
	)
	if f.Ticker != "" {
		args = append(args, f.Ticker)
		where = append(where, fmt.Sprintf("UPPER(ticker) = $%d", len(args)))
	}
	if f.Politician != "" {
		args = append(args, "%"+f.Politician+"%")
		where = append(where, fmt.Sprintf("politician ILIKE $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since.Time)
		where = append(where, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}

	query := "SELECT" + tradeColumns + "\nFROM political_trades"
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf("\nORDER BY transaction_date DESC, id DESC\nLIMIT $%d", len(args))

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	observability.RecordDBQuery("postgres", "list_trades", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list political trades: %w", err)
	}
	defer rows.Close()

	trades := []model.PoliticalTrade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan political trade row: %w", err)
		}
		trades = append(trades, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate political trade rows: %w", err)
	}
	return trades, nil
}

func (s *PostgresStore) GetTrade(ctx context.Context, id int64) (*model.PoliticalTrade, error) {
	query := "SELECT" + tradeColumns + "\nFROM political_trades\nWHERE id = $1"

	start := time.Now()
	t, err := scanTrade(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		observability.RecordDBQuery("postgres", "get_trade", time.Since(start).Seconds(), nil)
		return nil, ErrNotFound
	}
	observability.RecordDBQuery("postgres", "get_trade", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get political trade %d: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) ListTickers(ctx context.Context, since model.Date) ([]string, error) {
	query := `
		SELECT DISTINCT UPPER(ticker)
		FROM political_trades
		WHERE ticker <> '' AND transaction_date >= $1
		ORDER BY 1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, since.Time)
	observability.RecordDBQuery("postgres", "list_tickers", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list political tickers: %w", err)
	}
	defer rows.Close()

	tickers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect political tickers: %w", err)
	}
	return tickers, nil
}

// scanTrade scans a single row selected with tradeColumns.
func scanTrade(row pgx.Row) (*model.PoliticalTrade, error) {
	var (
		t                    model.PoliticalTrade
		txDate               time.Time
		discDate             *time.Time
		amountMin, amountMax string
	)
	err := row.Scan(
		&t.ID,
		&t.Politician,
		&t.Party,
		&t.Chamber,
		&t.Ticker,
		&t.AssetDescription,
		&t.TransactionType,
		&txDate,
		&discDate,
		&amountMin,
		&amountMax,
		&t.Owner,
	)
	if err != nil {
		return nil, err
	}

	t.TransactionDate = model.DateOf(txDate)
	if discDate != nil {
		t.DisclosureDate = model.DateOf(*discDate)
	}
	if t.AmountMin, err = parseAmount(amountMin); err != nil {
		return nil, err
	}
	if t.AmountMax, err = parseAmount(amountMax); err != nil {
		return nil, err
	}
	return &t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
