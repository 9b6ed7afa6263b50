package strategy

import (
	"math"

	"github.com/paperkite/paperkite/internal/domain/candle"
)

// RSI computes a Wilder-smoothed relative strength index over closing
// prices. The first value is seeded from a simple average of the first
// `period` changes, later values use smoothed averages. Returns nil when
// there are not enough closes.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change >= 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change >= 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// SMA computes a simple moving average series. Returns nil when there are
// fewer values than the period.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// CCI computes the commodity channel index over typical prices
// (high+low+close)/3 with the conventional 0.015 scaling constant. A
// window with zero mean absolute deviation yields 0.
func CCI(candles []candle.Candle, period int) []float64 {
	if period <= 0 || len(candles) < period {
		return nil
	}

	typical := make([]float64, len(candles))
	for i, c := range candles {
		typical[i] = (c.High + c.Low + c.Close) / 3
	}

	out := make([]float64, 0, len(candles)-period+1)
	for i := period - 1; i < len(typical); i++ {
		window := typical[i-period+1 : i+1]

		var sum float64
		for _, tp := range window {
			sum += tp
		}
		mean := sum / float64(period)

		var dev float64
		for _, tp := range window {
			dev += math.Abs(tp - mean)
		}
		dev /= float64(period)

		if dev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (typical[i]-mean)/(0.015*dev))
	}
	return out
}

// Latest returns the last value of an indicator series.
func Latest(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}
