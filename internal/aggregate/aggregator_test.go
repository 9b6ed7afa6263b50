package aggregate

import (
	"testing"
	"time"

	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/pkg/timeframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTick(ts time.Time, price float64, volume int64) tick.Tick {
	return tick.Tick{Timestamp: ts, Symbol: "NIFTY", Price: price, Volume: volume}
}

func TestBulk(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		ticks    []tick.Tick
		tf       timeframe.Timeframe
		assertFn func(t *testing.T, out []float64, candles int)
	}{
		{
			name: "single minute bucket",
			ticks: []tick.Tick{
				mkTick(t0, 100, 10),
				mkTick(t0.Add(30*time.Second), 105, 5),
				mkTick(t0.Add(50*time.Second), 98, 5),
			},
			tf: timeframe.Minute,
			assertFn: func(t *testing.T, _ []float64, candles int) {
				assert.Equal(t, 1, candles)
			},
		},
		{
			name: "ticks spanning two five minute buckets",
			ticks: []tick.Tick{
				mkTick(t0, 100, 1),
				mkTick(t0.Add(4*time.Minute), 101, 1),
				mkTick(t0.Add(5*time.Minute), 102, 1),
			},
			tf: timeframe.Minute5,
			assertFn: func(t *testing.T, _ []float64, candles int) {
				assert.Equal(t, 2, candles)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := Bulk(tc.ticks, tc.tf)
			tc.assertFn(t, out.Closes(), len(out))
		})
	}
}

func TestBulk_OHLCVInvariants(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	ticks := []tick.Tick{
		mkTick(t0, 100, 10),
		mkTick(t0.Add(30*time.Second), 105, 5),
		mkTick(t0.Add(90*time.Second), 98, 7),
		mkTick(t0.Add(3*time.Minute), 103, 2),
	}

	out := Bulk(ticks, timeframe.Minute)

	require.Len(t, out, 3)
	for i, c := range out {
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		if i > 0 {
			gap := c.PeriodStart.Sub(out[i-1].PeriodStart)
			assert.GreaterOrEqual(t, gap, timeframe.Minute.Duration)
		}
	}
}

func TestBulk_DoesNotTouchLiveState(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	live := NewLive(timeframe.Minute)
	live.Apply(mkTick(t0, 100, 1))

	Bulk([]tick.Tick{mkTick(t0, 999, 99)}, timeframe.Minute)

	candles := live.Candles()
	require.Len(t, candles, 1)
	assert.Equal(t, 100.0, candles[0].Close)
	assert.Equal(t, int64(1), candles[0].Volume)
}

func TestLive_OpenCandleScenario(t *testing.T) {
	// ticks [{t0,100},{t0+30s,105},{t0+90s,98}] at 1-minute timeframe:
	// the second bucket opens at t0+60s with the 98 tick, the first is
	// frozen as {open:100,high:105,low:100,close:105}.
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	live := NewLive(timeframe.Minute)

	first := live.Apply(mkTick(t0, 100, 0))
	assert.Equal(t, 100.0, first.Open)

	second := live.Apply(mkTick(t0.Add(30*time.Second), 105, 0))
	assert.Equal(t, 100.0, second.Open)
	assert.Equal(t, 105.0, second.High)
	assert.Equal(t, 105.0, second.Close)

	third := live.Apply(mkTick(t0.Add(90*time.Second), 98, 0))
	assert.True(t, third.PeriodStart.Equal(t0.Add(time.Minute)))
	assert.Equal(t, 98.0, third.Open)

	candles := live.Candles()
	require.Len(t, candles, 2)
	frozen := candles[0]
	assert.Equal(t, 100.0, frozen.Open)
	assert.Equal(t, 105.0, frozen.High)
	assert.Equal(t, 100.0, frozen.Low)
	assert.Equal(t, 105.0, frozen.Close)
}

func TestLive_LateTickReopensBucket(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	live := NewLive(timeframe.Minute)

	live.Apply(mkTick(t0, 100, 10))
	live.Apply(mkTick(t0.Add(time.Minute), 110, 10))

	// late tick for the already-closed first bucket
	updated := live.Apply(mkTick(t0.Add(45*time.Second), 95, 5))

	assert.True(t, updated.PeriodStart.Equal(t0))
	assert.Equal(t, 100.0, updated.Open, "open never changes after the first tick")
	assert.Equal(t, 95.0, updated.Low, "low widens")
	assert.Equal(t, 95.0, updated.Close, "close is last-writer-wins")
	assert.Equal(t, int64(15), updated.Volume, "volume accumulates")

	// the newer bucket is untouched
	candles := live.Candles()
	require.Len(t, candles, 2)
	assert.Equal(t, 110.0, candles[1].Close)
}

func TestLive_VolumeAccumulates(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	live := NewLive(timeframe.Minute5)

	live.Apply(mkTick(t0, 100, 10))
	live.Apply(mkTick(t0.Add(time.Minute), 101, 20))
	c := live.Apply(mkTick(t0.Add(2*time.Minute), 99, 30))

	assert.Equal(t, int64(60), c.Volume)
}

func TestLive_Reset(t *testing.T) {
	t0 := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	live := NewLive(timeframe.Minute)
	live.Apply(mkTick(t0, 100, 1))

	live.Reset()

	assert.Len(t, live.Candles(), 0)
}
