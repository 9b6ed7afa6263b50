package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperkite/paperkite/internal/domain/candle"
)

func flatCandles(n int, close float64) candle.Series {
	return seriesFromCloses(repeat(close, n), 5*time.Minute)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func seriesFromCloses(closes []float64, step time.Duration) candle.Series {
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	out := make(candle.Series, len(closes))
	for i, c := range closes {
		out[i] = candle.Candle{
			PeriodStart: start.Add(time.Duration(i) * step),
			Open:        c,
			High:        c + 1,
			Low:         c - 1,
			Close:       c,
			Volume:      100,
		}
	}
	return out
}

func TestRSI_AllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rsi := RSI(closes, 14)
	require.NotEmpty(t, rsi)
	for _, v := range rsi {
		assert.InDelta(t, 100, v, 1e-9)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	assert.Nil(t, RSI(repeat(100, 14), 14))
	assert.Nil(t, RSI(nil, 14))
}

func TestRSI_Bounded(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 104, 106, 102, 101, 99, 98, 100, 103, 105, 104, 106, 108, 107, 109, 110}

	rsi := RSI(closes, 14)
	require.Len(t, rsi, len(closes)-14)
	for _, v := range rsi {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 3)
	assert.InDelta(t, 2, out[0], 1e-9)
	assert.InDelta(t, 3, out[1], 1e-9)
	assert.InDelta(t, 4, out[2], 1e-9)

	assert.Nil(t, SMA([]float64{1, 2}, 3))
}

func TestCCI_ZeroDeviation(t *testing.T) {
	cci := CCI(flatCandles(25, 100), 20)
	require.NotEmpty(t, cci)
	for _, v := range cci {
		assert.Zero(t, v)
	}
}

func TestCCI_SpikePushesAboveHundred(t *testing.T) {
	closes := repeat(100, 24)
	closes = append(closes, 110)

	cci := CCI(seriesFromCloses(closes, 5*time.Minute), 20)
	require.NotEmpty(t, cci)
	assert.Greater(t, cci[len(cci)-1], 100.0)
}

func TestCCI_InsufficientData(t *testing.T) {
	assert.Nil(t, CCI(flatCandles(19, 100), 20))
}
