package candle

import (
	"sort"
	"time"
)

// Candle represents a single OHLCV data point. PeriodStart is aligned to
// the timeframe boundary (the floor of the contributing ticks' timestamps).
// A candle is mutated in place while its period is open and frozen once a
// later period begins.
type Candle struct {
	PeriodStart time.Time `json:"date"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
}

// Series is a time-ordered sequence of candles.
type Series []Candle

// Merge combines a historical series with live-aggregated candles into one
// time-ordered, duplicate-free series. Historical data is authoritative up
// to its last PeriodStart; live candles at or before that boundary are
// discarded, strictly-later ones extend the series. Merge is a pure
// function of its inputs: neither slice is modified and re-running it on
// the same inputs yields an identical result.
func Merge(historical, live Series) Series {
	if len(historical) == 0 {
		merged := make(Series, len(live))
		copy(merged, live)
		sortByPeriodStart(merged)
		return dedupe(merged)
	}

	merged := make(Series, 0, len(historical)+len(live))
	merged = append(merged, historical...)

	boundary := historical[len(historical)-1].PeriodStart
	for _, c := range live {
		if c.PeriodStart.After(boundary) {
			merged = append(merged, c)
		}
	}

	sortByPeriodStart(merged)
	return dedupe(merged)
}

func sortByPeriodStart(s Series) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].PeriodStart.Before(s[j].PeriodStart)
	})
}

// dedupe drops candles sharing a PeriodStart, keeping the first (earlier
// entries come from the authoritative side).
func dedupe(s Series) Series {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, c := range s[1:] {
		if c.PeriodStart.Equal(out[len(out)-1].PeriodStart) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Last returns the most recent candle, or false if the series is empty.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Upto returns the prefix of the series whose PeriodStart is at or before
// cutoff. The series must already be sorted ascending.
func (s Series) Upto(cutoff time.Time) Series {
	idx := sort.Search(len(s), func(i int) bool {
		return s[i].PeriodStart.After(cutoff)
	})
	return s[:idx]
}

// Closes returns the close prices of the series in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}
