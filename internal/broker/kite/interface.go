package kite

import (
	"context"

	"github.com/paperkite/paperkite/internal/domain/candle"
)

//go:generate mockgen -source=interface.go -destination=mock/broker_mock.go -package=mock

// Broker is the brokerage API surface the simulator depends on. It is
// injected into whichever component needs it; nothing holds a shared
// singleton client.
type Broker interface {
	GenerateSession(ctx context.Context, requestToken string) (*Session, error)
	GetHistoricalData(ctx context.Context, req HistoricalRequest) (candle.Series, error)
	GetLTP(ctx context.Context, instruments ...string) (map[string]float64, error)
	GetInstruments(ctx context.Context, exchange string) ([]Instrument, error)
}
