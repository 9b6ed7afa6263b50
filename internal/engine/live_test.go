package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/internal/ledger"
	"github.com/paperkite/paperkite/internal/strategy"
)

func rawTick(ts time.Time, price float64) tick.Raw {
	return tick.Raw{
		Timestamp: ts.Format(time.RFC3339),
		Symbol:    "NIFTY",
		LastPrice: price,
		Volume:    10,
	}
}

func newLiveSession(t *testing.T, hist5 candle.Series, strategies []strategy.Strategy, observer Observer) *Live {
	t.Helper()
	return NewLive(testLogger(t), LiveConfig{
		Symbol:         "NIFTY",
		InitialCapital: decimal.NewFromInt(1_000_000),
		Historical5m:   hist5,
		TickBufferSize: 100,
		EvalInterval:   0,
	}, strategies, observer)
}

func TestLive_TicksBecomeMergedCandles(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	hist := series5m([]float64{100, 101})

	l := newLiveSession(t, hist, nil, nil)

	// two ticks inside one 5 minute bucket after the historical boundary
	liveStart := start.Add(10 * time.Minute)
	l.HandleTick(rawTick(liveStart, 102))
	l.HandleTick(rawTick(liveStart.Add(time.Minute), 104))

	snap := l.Snapshot()
	require.Len(t, snap.Candles5m, 3)
	last := snap.Candles5m[2]
	assert.InDelta(t, 102, last.Open, 1e-9)
	assert.InDelta(t, 104, last.Close, 1e-9)
	assert.EqualValues(t, 20, last.Volume)
}

func TestLive_HistoricalWinsAtBoundary(t *testing.T) {
	hist := series5m([]float64{100, 101})

	l := newLiveSession(t, hist, nil, nil)

	// tick inside the last historical bucket must not produce a candle
	l.HandleTick(rawTick(hist[1].PeriodStart.Add(time.Minute), 250))

	snap := l.Snapshot()
	require.Len(t, snap.Candles5m, 2)
	assert.InDelta(t, 101, snap.Candles5m[1].Close, 1e-9)
}

func TestLive_InvalidTickSkipped(t *testing.T) {
	l := newLiveSession(t, nil, nil, nil)

	l.HandleTick(tick.Raw{Timestamp: "not a time", Symbol: "NIFTY", LastPrice: 100})
	l.HandleTick(tick.Raw{Timestamp: time.Now().Format(time.RFC3339), Symbol: "NIFTY", LastPrice: -5})

	assert.Empty(t, l.Snapshot().Candles5m)
	assert.Empty(t, l.Ticks())
}

func TestLive_BufferBounded(t *testing.T) {
	l := newLiveSession(t, nil, nil, nil)

	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		l.HandleTick(rawTick(start.Add(time.Duration(i)*time.Second), 100+float64(i)))
	}

	ticks := l.Ticks()
	require.Len(t, ticks, 100)
	assert.InDelta(t, 100+50, ticks[0].Price, 1e-9)
}

func TestLive_StrategyTradesAndMarks(t *testing.T) {
	// seed enough history for the CCI warmup, then spike the live price
	hist := series5m(func() []float64 {
		out := make([]float64, 24)
		for i := range out {
			out[i] = 100
		}
		return out
	}())

	var trades []ledger.Trade
	l := newLiveSession(t, hist, []strategy.Strategy{strategy.NewCCIMomentum(1)}, func(s Snapshot) {
		trades = s.Trades
	})

	spikeAt := hist[len(hist)-1].PeriodStart.Add(5 * time.Minute)
	l.HandleTick(rawTick(spikeAt, 110))

	require.Len(t, trades, 1)
	assert.Equal(t, ledger.Buy, trades[0].Type)
	assert.True(t, trades[0].Price.Equal(decimal.NewFromInt(110)))

	snap := l.Snapshot()
	require.Len(t, snap.Portfolio.Positions, 1)
	assert.True(t, snap.Portfolio.TotalEquity.Equal(decimal.NewFromInt(1_000_000)))
}

func TestLive_ResetKeepsHistory(t *testing.T) {
	hist := series5m([]float64{100, 101})
	l := newLiveSession(t, hist, nil, nil)

	l.HandleTick(rawTick(hist[1].PeriodStart.Add(10*time.Minute), 105))
	require.Len(t, l.Snapshot().Candles5m, 3)

	l.Reset()

	snap := l.Snapshot()
	assert.Len(t, snap.Candles5m, 2)
	assert.Empty(t, l.Ticks())
	assert.True(t, snap.Portfolio.Cash.Equal(decimal.NewFromInt(1_000_000)))
}

func TestLive_TicksAppliedInOrder(t *testing.T) {
	l := newLiveSession(t, nil, nil, nil)

	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		l.HandleTick(rawTick(start.Add(time.Duration(i)*time.Second), float64(100+i)))
	}

	ticks := l.Ticks()
	require.Len(t, ticks, 10)
	for i := 1; i < len(ticks); i++ {
		assert.True(t, ticks[i].Timestamp.After(ticks[i-1].Timestamp),
			fmt.Sprintf("tick %d out of order", i))
	}
}
