package tick

import (
	"math"
	"time"

	"github.com/paperkite/paperkite/pkg/errors"
)

// Tick represents a single last-traded-price data point. Ticks are
// ephemeral: they are consumed once by an aggregator and retained only in
// a bounded rolling buffer.
type Tick struct {
	Timestamp time.Time
	Symbol    string
	Price     float64
	Volume    int64
}

// Raw is a tick as delivered by the upstream feed before validation.
// Timestamp arrives as a string because the relay forwards broker JSON
// verbatim; LastPrice and Volume may be absent or garbage.
type Raw struct {
	Timestamp string  `json:"timestamp"`
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	Volume    int64   `json:"volume"`
}

// timestampLayouts are the formats the broker feed is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Normalize validates and coerces a raw tick into canonical form. A tick
// with a non-finite or non-positive price, or an unparsable timestamp, is
// rejected with an invalid_tick error and must not reach any candle.
// Negative volume is coerced to zero.
func Normalize(raw Raw) (Tick, error) {
	if math.IsNaN(raw.LastPrice) || math.IsInf(raw.LastPrice, 0) || raw.LastPrice <= 0 {
		return Tick{}, errors.NewDomainError("tick has non-positive or non-finite price", errors.InvalidTick, "last_price")
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return Tick{}, errors.NewDomainError("tick has unparsable timestamp", errors.InvalidTick, "timestamp")
	}

	volume := raw.Volume
	if volume < 0 {
		volume = 0
	}

	return Tick{
		Timestamp: ts,
		Symbol:    raw.Symbol,
		Price:     raw.LastPrice,
		Volume:    volume,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			if ts.IsZero() {
				break
			}
			return ts, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.NewDomainError("zero timestamp", errors.InvalidTick, "timestamp")
	}
	return time.Time{}, lastErr
}

// Buffer is a bounded rolling buffer of the most recent ticks. Appending
// beyond capacity drops the oldest entries so memory stays bounded no
// matter how long a live session runs.
type Buffer struct {
	ticks []Tick
	limit int
}

// NewBuffer creates a rolling buffer keeping at most limit ticks.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Append adds a tick, evicting the oldest if the buffer is full.
func (b *Buffer) Append(t Tick) {
	b.ticks = append(b.ticks, t)
	if len(b.ticks) > b.limit {
		b.ticks = b.ticks[len(b.ticks)-b.limit:]
	}
}

// Len returns the number of buffered ticks.
func (b *Buffer) Len() int {
	return len(b.ticks)
}

// Reset drops all buffered ticks, keeping the limit.
func (b *Buffer) Reset() {
	b.ticks = nil
}

// Snapshot returns a copy of the buffered ticks in arrival order.
func (b *Buffer) Snapshot() []Tick {
	out := make([]Tick, len(b.ticks))
	copy(out, b.ticks)
	return out
}
