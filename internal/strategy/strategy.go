// Package strategy holds the trading strategy evaluators. Each evaluator
// is a pure function of the visible candle windows and the strategy's
// current position; all durable position state lives in the ledger, so an
// evaluator can be re-run safely on the same inputs.
package strategy

import (
	"time"

	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/ledger"
)

// Context is the input frame for one evaluation: candle windows per
// timeframe up to the current replay cutoff (or the live merged series)
// and the strategy's own open position, if any.
type Context struct {
	Candles5m  candle.Series
	Candles15m candle.Series
	Position   *ledger.Position
}

// Intent is a proposed trade emitted by an evaluator. The engine turns
// intents into ledger trades; an intent that the ledger rejects leaves
// the evaluator's next run to re-derive its state from the position.
type Intent struct {
	Type       ledger.TradeType
	Price      float64
	Quantity   int64
	Timestamp  time.Time
	PositionID string
	Reason     string
}

// Strategy evaluates one candle frame and emits at most one trade intent.
type Strategy interface {
	// Tag identifies the strategy's position family in the ledger.
	Tag() string
	// Evaluate returns a trade intent or nil when there is no signal.
	// Insufficient history is not an error, just no signal.
	Evaluate(ctx Context) *Intent
}

func latestClose(series candle.Series) (price float64, ts time.Time, ok bool) {
	last, ok := series.Last()
	if !ok {
		return 0, time.Time{}, false
	}
	return last.Close, last.PeriodStart, true
}
