package strategy

import "github.com/paperkite/paperkite/internal/ledger"

// RSISMA is a dual timeframe momentum strategy: it goes long when the
// 14-period RSI sits on or above its own 20-period SMA on the 5 minute
// series while the 15 minute RSI is strictly above its SMA, and exits at
// a fixed 10% profit target measured from the entry price.
type RSISMA struct {
	rsiPeriod  int
	smaPeriod  int
	minCandles int
	quantity   int64
}

const rsiSMATag = "RSI-SMA Strategy"

// NewRSISMA creates the evaluator with its standard periods. quantity is
// the fixed size of every trade it emits.
func NewRSISMA(quantity int64) *RSISMA {
	return &RSISMA{
		rsiPeriod:  14,
		smaPeriod:  20,
		minCandles: 40,
		quantity:   quantity,
	}
}

func (s *RSISMA) Tag() string { return rsiSMATag }

func (s *RSISMA) Evaluate(ctx Context) *Intent {
	if len(ctx.Candles5m) < s.minCandles || len(ctx.Candles15m) < s.minCandles {
		return nil
	}

	price, ts, ok := latestClose(ctx.Candles5m)
	if !ok {
		return nil
	}

	if ctx.Position != nil {
		entry, _ := ctx.Position.AvgPrice.Float64()
		if price >= entry*1.10 {
			return &Intent{
				Type:       ledger.Sell,
				Price:      price,
				Quantity:   ctx.Position.Quantity,
				Timestamp:  ts,
				PositionID: ctx.Position.ID,
				Reason:     "Take Profit (10%)",
			}
		}
		return nil
	}

	rsiSeries5 := RSI(ctx.Candles5m.Closes(), s.rsiPeriod)
	rsiSeries15 := RSI(ctx.Candles15m.Closes(), s.rsiPeriod)
	rsi5, ok5 := Latest(rsiSeries5)
	sma5, okSMA5 := Latest(SMA(rsiSeries5, s.smaPeriod))
	rsi15, ok15 := Latest(rsiSeries15)
	sma15, okSMA15 := Latest(SMA(rsiSeries15, s.smaPeriod))
	if !ok5 || !okSMA5 || !ok15 || !okSMA15 {
		return nil
	}

	if rsi5 >= sma5 && rsi15 > sma15 {
		return &Intent{
			Type:      ledger.Buy,
			Price:     price,
			Quantity:  s.quantity,
			Timestamp: ts,
			Reason:    "RSI above RSI-SMA on both timeframes",
		}
	}
	return nil
}
