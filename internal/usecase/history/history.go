// Package history serves historical candle series with a cache-aside
// QuestDB layer in front of the broker's REST API. Intraday Kite
// endpoints cap the range of a single request, so long ranges are
// fetched in windows and stitched back together.
package history

import (
	"context"
	"time"

	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/infrastructure/questdb/candleseries"
	"github.com/paperkite/paperkite/pkg/errors"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/timeframe"
)

// maxWindow is the widest range requested from the broker per call.
// Kite caps intraday intervals at 100 days per request; 60 keeps a
// margin across all supported timeframes.
const maxWindow = 60 * 24 * time.Hour

// Request selects a series to load.
type Request struct {
	Symbol          string
	InstrumentToken string
	Timeframe       timeframe.Timeframe
	From            time.Time
	To              time.Time
}

// Usecase loads candle series, preferring the QuestDB cache and filling
// misses from the broker.
type Usecase struct {
	broker     kite.Broker
	repository candleseries.CandleRepository
	logger     logger.Interface
}

// NewUsecase creates a new history usecase.
func NewUsecase(broker kite.Broker, repository candleseries.CandleRepository, logger logger.Interface) *Usecase {
	return &Usecase{broker: broker, repository: repository, logger: logger}
}

// GetSeries returns the candle series for a request. Fully cached ranges
// never hit the broker; anything fetched is written back to the cache.
// Cache write failures degrade to a warning, the series is still served.
func (u *Usecase) GetSeries(ctx context.Context, req Request) (candle.Series, error) {
	if !req.From.Before(req.To) {
		return nil, errors.NewDomainError("history range is empty", errors.InvalidRange, "from")
	}

	cached, err := u.repository.GetByFilter(ctx, candleseries.Filter{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe.Name,
		From:      &req.From,
		To:        &req.To,
	})
	if err != nil {
		u.logger.Warn("candle cache read failed, falling back to broker",
			logger.NewField("symbol", req.Symbol),
			logger.NewField("error", err.Error()),
		)
	}
	if covered(cached, req) {
		return candleseries.ToSeries(cached), nil
	}

	fetched, err := u.fetchWindowed(ctx, req)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	merged := candle.Merge(candleseries.ToSeries(cached), fetched)

	if err := u.repository.StoreBatch(ctx, candleseries.FromSeries(req.Symbol, req.Timeframe.Name, fetched)); err != nil {
		u.logger.Warn("candle cache write failed",
			logger.NewField("symbol", req.Symbol),
			logger.NewField("error", err.Error()),
		)
	}

	return merged, nil
}

// covered reports whether the cached rows span the requested range. One
// trailing bucket of slack is allowed since the final bucket may still
// have been open when it was cached.
func covered(cached []*candleseries.Row, req Request) bool {
	if len(cached) == 0 {
		return false
	}
	first := cached[0].PeriodStart
	last := cached[len(cached)-1].PeriodStart
	if first.After(req.From.Add(req.Timeframe.Duration)) {
		return false
	}
	return !last.Before(req.To.Add(-2 * req.Timeframe.Duration))
}

func (u *Usecase) fetchWindowed(ctx context.Context, req Request) (candle.Series, error) {
	var out candle.Series

	for from := req.From; from.Before(req.To); from = from.Add(maxWindow) {
		to := from.Add(maxWindow)
		if to.After(req.To) {
			to = req.To
		}

		window, err := u.broker.GetHistoricalData(ctx, kite.HistoricalRequest{
			InstrumentToken: req.InstrumentToken,
			Interval:        req.Timeframe.Name,
			From:            from,
			To:              to,
		})
		if err != nil {
			return nil, err
		}

		out = candle.Merge(out, window)
	}

	u.logger.Info("fetched history from broker",
		logger.NewField("symbol", req.Symbol),
		logger.NewField("timeframe", req.Timeframe.Name),
		logger.NewField("candles", len(out)),
	)
	return out, nil
}
