// Package engine drives the two simulation modes: candle-by-candle
// historical replay and live tick sessions. Both funnel strategy intents
// through the same ledger and publish portfolio snapshots to an observer.
package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/ledger"
	"github.com/paperkite/paperkite/internal/replay"
	"github.com/paperkite/paperkite/internal/strategy"
	"github.com/paperkite/paperkite/pkg/logger"
)

// Snapshot is the state frame published after every replay step or live
// update: the visible candle windows, the portfolio and the trade log.
type Snapshot struct {
	Candles5m  candle.Series
	Candles15m candle.Series
	Portfolio  ledger.Portfolio
	Trades     []ledger.Trade
	Index      int
	State      replay.State
}

// Observer receives snapshots. Called outside the engine lock; it must
// not call back into the engine.
type Observer func(Snapshot)

// Backtest replays a fixed pair of historical candle series through the
// strategies, one 5 minute candle per clock step. The 15 minute window is
// cut to the replay position so strategies never see the future.
type Backtest struct {
	mu sync.Mutex

	log        logger.Interface
	series5m   candle.Series
	series15m  candle.Series
	clock      *replay.Clock
	book       *ledger.Ledger
	strategies []strategy.Strategy

	tradeInProgress bool
	lastEvaluated   time.Time
	observer        Observer
}

// NewBacktest wires a replay over the given series. initialCapital funds
// the ledger; opts tunes the clock scheduler.
func NewBacktest(
	log logger.Interface,
	symbol string,
	series5m, series15m candle.Series,
	initialCapital decimal.Decimal,
	strategies []strategy.Strategy,
	opts replay.Options,
	observer Observer,
) *Backtest {
	b := &Backtest{
		log:        log,
		series5m:   series5m,
		series15m:  series15m,
		book:       ledger.New(symbol, initialCapital),
		strategies: strategies,
		observer:   observer,
	}
	b.clock = replay.NewClock(len(series5m), opts, b.step, b.onReset)
	return b
}

// Play starts or resumes the replay.
func (b *Backtest) Play() { b.clock.Play() }

// Pause halts the replay without losing position.
func (b *Backtest) Pause() { b.clock.Pause() }

// SetSpeed changes the replay speed multiplier.
func (b *Backtest) SetSpeed(speed float64) { b.clock.SetSpeed(speed) }

// Reset rewinds the replay and clears all portfolio and trade state.
func (b *Backtest) Reset() { b.clock.Reset() }

// Snapshot returns the current state frame.
func (b *Backtest) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(b.clock.Index())
}

func (b *Backtest) step(index int) {
	b.mu.Lock()

	if index >= len(b.series5m) {
		index = len(b.series5m) - 1
	}
	current := b.series5m[index]
	cutoff := current.PeriodStart

	if !cutoff.After(b.lastEvaluated) {
		snap := b.snapshotLocked(index)
		b.mu.Unlock()
		b.publish(snap)
		return
	}
	b.lastEvaluated = cutoff

	window5 := b.series5m[:index+1]
	window15 := b.series15m.Upto(cutoff)

	b.evaluateLocked(window5, window15)
	b.book.MarkPrice(decimal.NewFromFloat(current.Close))

	snap := b.snapshotLocked(index)
	b.mu.Unlock()
	b.publish(snap)
}

// evaluateLocked runs every strategy once against the visible windows.
// A trade-in-progress flag serializes intents within the pass so one
// evaluation cannot stack a second trade on an unapplied first.
func (b *Backtest) evaluateLocked(window5, window15 candle.Series) {
	for _, s := range b.strategies {
		if b.tradeInProgress {
			return
		}

		ctx := strategy.Context{Candles5m: window5, Candles15m: window15}
		if pos, ok := b.book.Position("", s.Tag()); ok {
			ctx.Position = &pos
		}

		intent := s.Evaluate(ctx)
		if intent == nil {
			continue
		}

		b.tradeInProgress = true
		b.applyIntentLocked(s.Tag(), intent)
		b.tradeInProgress = false
	}
}

func (b *Backtest) applyIntentLocked(tag string, intent *strategy.Intent) {
	trade := ledger.NewTrade(intent.Type, decimal.NewFromFloat(intent.Price), intent.Quantity, intent.Timestamp, tag)
	trade.PositionID = intent.PositionID
	trade.Reason = intent.Reason

	if _, err := b.book.ApplyTrade(trade); err != nil {
		b.log.Warn("trade rejected",
			logger.NewField("strategy", tag),
			logger.NewField("type", string(intent.Type)),
			logger.NewField("error", err.Error()),
		)
	}
}

func (b *Backtest) onReset() {
	b.mu.Lock()
	b.book.Reset()
	b.lastEvaluated = time.Time{}
	b.tradeInProgress = false
	snap := b.snapshotLocked(0)
	b.mu.Unlock()
	b.publish(snap)
}

func (b *Backtest) snapshotLocked(index int) Snapshot {
	end := index + 1
	if end > len(b.series5m) {
		end = len(b.series5m)
	}
	var window5 candle.Series
	var window15 candle.Series
	if end > 0 {
		window5 = b.series5m[:end]
		window15 = b.series15m.Upto(b.series5m[end-1].PeriodStart)
	}
	return Snapshot{
		Candles5m:  window5,
		Candles15m: window15,
		Portfolio:  b.book.Snapshot(),
		Trades:     b.book.Trades(),
		Index:      index,
		State:      b.clock.State(),
	}
}

func (b *Backtest) publish(snap Snapshot) {
	if b.observer != nil {
		b.observer(snap)
	}
}
