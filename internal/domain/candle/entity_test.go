package candle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mk(periodStart time.Time, close float64) Candle {
	return Candle{PeriodStart: periodStart, Open: close, High: close, Low: close, Close: close}
}

func TestMerge(t *testing.T) {
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	minute := func(i int) time.Time { return base.Add(time.Duration(i) * time.Minute) }

	testCases := []struct {
		name       string
		historical Series
		live       Series
		assertFn   func(t *testing.T, merged Series)
	}{
		{
			name:       "live extends past historical boundary",
			historical: Series{mk(minute(0), 100), mk(minute(1), 101)},
			live:       Series{mk(minute(1), 999), mk(minute(2), 102), mk(minute(3), 103)},
			assertFn: func(t *testing.T, merged Series) {
				require.Len(t, merged, 4)
				// historical candle at the boundary wins over the live one
				assert.Equal(t, 101.0, merged[1].Close)
				assert.Equal(t, 102.0, merged[2].Close)
				assert.Equal(t, 103.0, merged[3].Close)
			},
		},
		{
			name:       "live entirely before boundary is discarded",
			historical: Series{mk(minute(0), 100), mk(minute(5), 105)},
			live:       Series{mk(minute(1), 101), mk(minute(4), 104)},
			assertFn: func(t *testing.T, merged Series) {
				require.Len(t, merged, 2)
				assert.Equal(t, 100.0, merged[0].Close)
				assert.Equal(t, 105.0, merged[1].Close)
			},
		},
		{
			name:       "empty historical",
			historical: nil,
			live:       Series{mk(minute(1), 101), mk(minute(0), 100)},
			assertFn: func(t *testing.T, merged Series) {
				require.Len(t, merged, 2)
				assert.True(t, merged[0].PeriodStart.Before(merged[1].PeriodStart))
			},
		},
		{
			name:       "empty live",
			historical: Series{mk(minute(0), 100)},
			live:       nil,
			assertFn: func(t *testing.T, merged Series) {
				require.Len(t, merged, 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.assertFn(t, Merge(tc.historical, tc.live))
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	historical := Series{mk(base, 100), mk(base.Add(time.Minute), 101)}
	live := Series{mk(base.Add(time.Minute), 200), mk(base.Add(2*time.Minute), 102)}

	first := Merge(historical, live)
	second := Merge(historical, live)

	assert.Equal(t, first, second)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	historical := Series{mk(base.Add(time.Minute), 101), mk(base, 100)}
	live := Series{mk(base.Add(2*time.Minute), 102)}

	_ = Merge(historical, live)

	// the out-of-order historical input stays out of order
	assert.Equal(t, 101.0, historical[0].Close)
	assert.Equal(t, 100.0, historical[1].Close)
}

func TestMerge_SortedNoDuplicates(t *testing.T) {
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	historical := Series{mk(base, 100), mk(base.Add(time.Minute), 101)}
	live := Series{
		mk(base.Add(3*time.Minute), 103),
		mk(base.Add(2*time.Minute), 102),
		mk(base.Add(3*time.Minute), 104),
	}

	merged := Merge(historical, live)

	require.Len(t, merged, 4)
	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i-1].PeriodStart.Before(merged[i].PeriodStart))
	}
}

func TestSeries_Upto(t *testing.T) {
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	s := Series{mk(base, 100), mk(base.Add(time.Minute), 101), mk(base.Add(2*time.Minute), 102)}

	assert.Len(t, s.Upto(base.Add(time.Minute)), 2)
	assert.Len(t, s.Upto(base.Add(90*time.Second)), 2)
	assert.Len(t, s.Upto(base.Add(-time.Second)), 0)
	assert.Len(t, s.Upto(base.Add(time.Hour)), 3)
}

func TestSeries_Last(t *testing.T) {
	_, ok := Series{}.Last()
	assert.False(t, ok)

	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	last, ok := Series{mk(base, 100), mk(base.Add(time.Minute), 101)}.Last()
	require.True(t, ok)
	assert.Equal(t, 101.0, last.Close)
}
