package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperkite/paperkite/internal/aggregate"
	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/internal/ledger"
	"github.com/paperkite/paperkite/internal/strategy"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/timeframe"
)

// Live consumes a tick stream, folds each tick into the live 5 and 15
// minute aggregations exactly once, merges the result onto the historical
// series and runs the strategies at a throttled cadence. Invalid ticks
// are logged and skipped without touching any candle state.
type Live struct {
	mu sync.Mutex

	log        logger.Interface
	buffer     *tick.Buffer
	agg5       *aggregate.Live
	agg15      *aggregate.Live
	hist5      candle.Series
	hist15     candle.Series
	book       *ledger.Ledger
	strategies []strategy.Strategy

	evalInterval    time.Duration
	lastEval        time.Time
	tradeInProgress bool
	observer        Observer
}

// LiveConfig bundles the live session inputs.
type LiveConfig struct {
	Symbol         string
	InitialCapital decimal.Decimal
	// Historical seed series; live candles strictly after their last
	// period are appended on merge.
	Historical5m  candle.Series
	Historical15m candle.Series
	// TickBufferSize bounds the rolling raw tick buffer.
	TickBufferSize int
	// EvalInterval throttles strategy evaluation between ticks.
	EvalInterval time.Duration
}

// NewLive creates a live session.
func NewLive(log logger.Interface, cfg LiveConfig, strategies []strategy.Strategy, observer Observer) *Live {
	if cfg.TickBufferSize <= 0 {
		cfg.TickBufferSize = 5000
	}
	return &Live{
		log:          log,
		buffer:       tick.NewBuffer(cfg.TickBufferSize),
		agg5:         aggregate.NewLive(timeframe.Minute5),
		agg15:        aggregate.NewLive(timeframe.Minute15),
		hist5:        cfg.Historical5m,
		hist15:       cfg.Historical15m,
		book:         ledger.New(cfg.Symbol, cfg.InitialCapital),
		strategies:   strategies,
		evalInterval: cfg.EvalInterval,
		observer:     observer,
	}
}

// HandleTick applies one raw tick to the session. Ticks are applied in
// call order; the caller must not invoke HandleTick concurrently for the
// same instrument if ordering matters.
func (l *Live) HandleTick(raw tick.Raw) {
	t, err := tick.Normalize(raw)
	if err != nil {
		l.log.Warn("skipping invalid tick",
			logger.NewField("symbol", raw.Symbol),
			logger.NewField("error", err.Error()),
		)
		return
	}

	l.mu.Lock()

	l.buffer.Append(t)
	l.agg5.Apply(t)
	l.agg15.Apply(t)

	merged5 := candle.Merge(l.hist5, l.agg5.Candles())
	merged15 := candle.Merge(l.hist15, l.agg15.Candles())

	if time.Since(l.lastEval) >= l.evalInterval {
		l.lastEval = time.Now()
		l.evaluateLocked(merged5, merged15)
	}
	l.book.MarkPrice(decimal.NewFromFloat(t.Price))

	snap := Snapshot{
		Candles5m:  merged5,
		Candles15m: merged15,
		Portfolio:  l.book.Snapshot(),
		Trades:     l.book.Trades(),
	}
	l.mu.Unlock()

	if l.observer != nil {
		l.observer(snap)
	}
}

// Snapshot returns the current merged series and portfolio state.
func (l *Live) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Candles5m:  candle.Merge(l.hist5, l.agg5.Candles()),
		Candles15m: candle.Merge(l.hist15, l.agg15.Candles()),
		Portfolio:  l.book.Snapshot(),
		Trades:     l.book.Trades(),
	}
}

// Ticks returns a copy of the rolling raw tick buffer.
func (l *Live) Ticks() []tick.Tick {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.Snapshot()
}

// Reset clears the live aggregations, the tick buffer and all portfolio
// state. The historical seed series are kept.
func (l *Live) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffer.Reset()
	l.agg5.Reset()
	l.agg15.Reset()
	l.book.Reset()
	l.lastEval = time.Time{}
	l.tradeInProgress = false
}

func (l *Live) evaluateLocked(window5, window15 candle.Series) {
	for _, s := range l.strategies {
		if l.tradeInProgress {
			return
		}

		ctx := strategy.Context{Candles5m: window5, Candles15m: window15}
		if pos, ok := l.book.Position("", s.Tag()); ok {
			ctx.Position = &pos
		}

		intent := s.Evaluate(ctx)
		if intent == nil {
			continue
		}

		l.tradeInProgress = true
		trade := ledger.NewTrade(intent.Type, decimal.NewFromFloat(intent.Price), intent.Quantity, intent.Timestamp, s.Tag())
		trade.PositionID = intent.PositionID
		trade.Reason = intent.Reason
		if _, err := l.book.ApplyTrade(trade); err != nil {
			l.log.Warn("trade rejected",
				logger.NewField("strategy", s.Tag()),
				logger.NewField("type", string(intent.Type)),
				logger.NewField("error", err.Error()),
			)
		}
		l.tradeInProgress = false
	}
}
