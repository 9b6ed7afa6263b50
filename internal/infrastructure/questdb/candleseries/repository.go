// Package candleseries caches fetched historical candles in QuestDB so
// repeated backtests over the same range skip the broker round trip.
package candleseries

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/paperkite/paperkite/pkg/questdb"
)

// Repository stores and reads cached candles.
type Repository struct {
	client questdb.Client
}

// NewRepository creates a new candle cache repository.
func NewRepository(client questdb.Client) *Repository {
	return &Repository{
		client: client,
	}
}

// Store stores a single candle.
func (r *Repository) Store(ctx context.Context, row *Row) error {
	query := `INSERT INTO candles (period_start, symbol, timeframe, open, high, low, close, volume)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	err := r.client.Exec(ctx, query,
		row.PeriodStart, row.Symbol, row.Timeframe, row.Open, row.High,
		row.Low, row.Close, row.Volume)

	if err != nil {
		return fmt.Errorf("failed to store candle: %w", err)
	}

	return nil
}

// StoreBatch stores a batch of candles via CopyFrom.
func (r *Repository) StoreBatch(ctx context.Context, rows []*Row) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{"candles"},
		[]string{"period_start", "symbol", "timeframe", "open", "high", "low", "close", "volume"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{
				row.PeriodStart,
				row.Symbol,
				row.Timeframe,
				row.Open,
				row.High,
				row.Low,
				row.Close,
				row.Volume,
			}, nil
		}),
	)

	if err != nil {
		return fmt.Errorf("failed to copy candle batch: %w", err)
	}

	return nil
}

// GetByFilter retrieves cached candles ascending by period start.
func (r *Repository) GetByFilter(ctx context.Context, filter Filter) ([]*Row, error) {
	query := "SELECT period_start, symbol, timeframe, open, high, low, close, volume FROM candles WHERE 1=1"
	args := []any{}
	argIndex := 1

	if filter.Symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", argIndex)
		args = append(args, filter.Symbol)
		argIndex++
	}

	if filter.Timeframe != "" {
		query += fmt.Sprintf(" AND timeframe = $%d", argIndex)
		args = append(args, filter.Timeframe)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND period_start >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND period_start <= $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	query += " ORDER BY period_start ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		row := &Row{}
		err := rows.Scan(&row.PeriodStart, &row.Symbol, &row.Timeframe, &row.Open,
			&row.High, &row.Low, &row.Close, &row.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}

// GetLatest retrieves the most recent cached candle, or nil when the
// cache has none for this symbol and timeframe.
func (r *Repository) GetLatest(ctx context.Context, symbol, timeframe string) (*Row, error) {
	query := `SELECT period_start, symbol, timeframe, open, high, low, close, volume
			  FROM candles
			  WHERE symbol = $1 AND timeframe = $2
			  ORDER BY period_start DESC
			  LIMIT 1`

	row := &Row{}
	err := r.client.QueryRow(ctx, query, symbol, timeframe).Scan(
		&row.PeriodStart, &row.Symbol, &row.Timeframe, &row.Open, &row.High,
		&row.Low, &row.Close, &row.Volume)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest candle: %w", err)
	}

	return row, nil
}
