package tick

import (
	"math"
	"testing"
	"time"

	"github.com/paperkite/paperkite/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		raw      Raw
		assertFn func(t *testing.T, tick Tick, err error)
	}{
		{
			name: "valid tick",
			raw: Raw{
				Timestamp: "2024-03-14T10:15:30Z",
				Symbol:    "NIFTY24MARFUT",
				LastPrice: 22150.5,
				Volume:    75,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				require.NoError(t, err)
				assert.Equal(t, 22150.5, tick.Price)
				assert.Equal(t, int64(75), tick.Volume)
				assert.True(t, tick.Timestamp.Equal(time.Date(2024, 3, 14, 10, 15, 30, 0, time.UTC)))
			},
		},
		{
			name: "space separated timestamp",
			raw: Raw{
				Timestamp: "2024-03-14 10:15:30",
				LastPrice: 100,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				require.NoError(t, err)
				assert.Equal(t, 2024, tick.Timestamp.Year())
			},
		},
		{
			name: "zero price rejected",
			raw: Raw{
				Timestamp: "2024-03-14T10:15:30Z",
				LastPrice: 0,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				require.Error(t, err)
				assert.True(t, errors.CodeEquals(err, errors.InvalidTick))
			},
		},
		{
			name: "negative price rejected",
			raw: Raw{
				Timestamp: "2024-03-14T10:15:30Z",
				LastPrice: -1,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				assert.True(t, errors.CodeEquals(err, errors.InvalidTick))
			},
		},
		{
			name: "NaN price rejected",
			raw: Raw{
				Timestamp: "2024-03-14T10:15:30Z",
				LastPrice: math.NaN(),
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				assert.True(t, errors.CodeEquals(err, errors.InvalidTick))
			},
		},
		{
			name: "unparsable timestamp rejected",
			raw: Raw{
				Timestamp: "not-a-time",
				LastPrice: 100,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				require.Error(t, err)
				assert.True(t, errors.CodeEquals(err, errors.InvalidTick))
			},
		},
		{
			name: "negative volume coerced to zero",
			raw: Raw{
				Timestamp: "2024-03-14T10:15:30Z",
				LastPrice: 100,
				Volume:    -10,
			},
			assertFn: func(t *testing.T, tick Tick, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(0), tick.Volume)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tick, err := Normalize(tc.raw)
			tc.assertFn(t, tick, err)
		})
	}
}

func TestBuffer_BoundsMemory(t *testing.T) {
	buf := NewBuffer(3)
	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		buf.Append(Tick{Timestamp: base.Add(time.Duration(i) * time.Second), Price: float64(100 + i)})
	}

	require.Equal(t, 3, buf.Len())
	snapshot := buf.Snapshot()
	assert.Equal(t, 102.0, snapshot[0].Price)
	assert.Equal(t, 104.0, snapshot[2].Price)
}

func TestBuffer_SnapshotIsCopy(t *testing.T) {
	buf := NewBuffer(10)
	buf.Append(Tick{Price: 100})

	snapshot := buf.Snapshot()
	snapshot[0].Price = 999

	assert.Equal(t, 100.0, buf.Snapshot()[0].Price)
}
