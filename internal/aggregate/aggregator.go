// Package aggregate buckets price ticks into OHLCV candles at a chosen
// timeframe. It provides two deliberately separate aggregation contexts:
// Bulk, a pure one-shot function over its own throwaway map, and Live, a
// persistent incremental aggregator owning its own map. The two never
// share storage, so replay seeding can never corrupt live candles and
// vice versa.
package aggregate

import (
	"sort"

	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/pkg/timeframe"
)

// Bulk aggregates a batch of ticks into a sorted candle series. Every call
// works on a fresh internal map and has no side effects on any live state.
func Bulk(ticks []tick.Tick, tf timeframe.Timeframe) candle.Series {
	buckets := make(map[timeframe.Key]*candle.Candle)
	for _, t := range ticks {
		applyToBucket(buckets, t, tf)
	}
	return collect(buckets)
}

// Live is an incremental tick-to-candle aggregator. It owns a persistent
// bucket map updated exactly once per arriving tick; there is no periodic
// re-scan. Live is not safe for concurrent use: ticks must be applied in
// arrival order from a single goroutine.
type Live struct {
	tf      timeframe.Timeframe
	buckets map[timeframe.Key]*candle.Candle
}

// NewLive creates a live aggregator for the given timeframe.
func NewLive(tf timeframe.Timeframe) *Live {
	return &Live{
		tf:      tf,
		buckets: make(map[timeframe.Key]*candle.Candle),
	}
}

// Apply updates (or creates) the candle for the tick's bucket and returns
// a copy of the updated candle. A tick from a bucket earlier than the most
// recently open one reopens that bucket: high/low widen, close is replaced
// by the tick's price, volume accumulates, open never changes after the
// bucket's first tick.
func (l *Live) Apply(t tick.Tick) candle.Candle {
	return *applyToBucket(l.buckets, t, l.tf)
}

// Candles returns all live candles sorted ascending by period start.
func (l *Live) Candles() candle.Series {
	return collect(l.buckets)
}

// Reset discards all live candle state.
func (l *Live) Reset() {
	l.buckets = make(map[timeframe.Key]*candle.Candle)
}

func applyToBucket(buckets map[timeframe.Key]*candle.Candle, t tick.Tick, tf timeframe.Timeframe) *candle.Candle {
	key := tf.BucketKey(t.Timestamp)

	current, found := buckets[key]
	if !found {
		current = &candle.Candle{
			PeriodStart: tf.Floor(t.Timestamp),
			Open:        t.Price,
			High:        t.Price,
			Low:         t.Price,
			Close:       t.Price,
			Volume:      t.Volume,
		}
		buckets[key] = current
		return current
	}

	if t.Price > current.High {
		current.High = t.Price
	}
	if t.Price < current.Low {
		current.Low = t.Price
	}
	current.Close = t.Price
	current.Volume += t.Volume
	return current
}

func collect(buckets map[timeframe.Key]*candle.Candle) candle.Series {
	out := make(candle.Series, 0, len(buckets))
	for _, c := range buckets {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}
