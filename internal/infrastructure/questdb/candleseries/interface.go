package candleseries

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// CandleRepository represents the repository interface for cached candles.
type CandleRepository interface {
	Store(ctx context.Context, row *Row) error
	StoreBatch(ctx context.Context, rows []*Row) error
	GetByFilter(ctx context.Context, filter Filter) ([]*Row, error)
	GetLatest(ctx context.Context, symbol, timeframe string) (*Row, error)
}
