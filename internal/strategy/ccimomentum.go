package strategy

import (
	"time"

	"github.com/paperkite/paperkite/internal/ledger"
)

// CCIMomentum trades 20-period CCI momentum on the 5 minute series: long
// entry when CCI crosses above +100 with a stop 2% under the entry price,
// exit on the stop, on CCI dropping below -100, or on a 10% profit. The
// stop is evaluated before any signal logic on every frame.
type CCIMomentum struct {
	period        int
	minCandles    int
	quantity      int64
	stopLossRatio float64
	takeProfitPct float64
}

const cciTag = "CCI Strategy"

// NewCCIMomentum creates the evaluator with its standard period. quantity
// is the fixed size of every trade it emits.
func NewCCIMomentum(quantity int64) *CCIMomentum {
	return &CCIMomentum{
		period:        20,
		minCandles:    21,
		quantity:      quantity,
		stopLossRatio: 0.98,
		takeProfitPct: 10,
	}
}

func (s *CCIMomentum) Tag() string { return cciTag }

func (s *CCIMomentum) Evaluate(ctx Context) *Intent {
	if len(ctx.Candles5m) < s.minCandles {
		return nil
	}

	price, ts, ok := latestClose(ctx.Candles5m)
	if !ok {
		return nil
	}

	if ctx.Position != nil {
		return s.evaluateExit(ctx, price, ts)
	}

	cci, ok := Latest(CCI(ctx.Candles5m, s.period))
	if !ok {
		return nil
	}
	if cci > 100 {
		return &Intent{
			Type:      ledger.Buy,
			Price:     price,
			Quantity:  s.quantity,
			Timestamp: ts,
			Reason:    "CCI momentum entry",
		}
	}
	return nil
}

// evaluateExit orders the exit checks: stop loss first, then the CCI
// reversal signal, then the take profit.
func (s *CCIMomentum) evaluateExit(ctx Context, price float64, ts time.Time) *Intent {
	entry, _ := ctx.Position.AvgPrice.Float64()

	exit := func(reason string) *Intent {
		return &Intent{
			Type:       ledger.Sell,
			Price:      price,
			Quantity:   ctx.Position.Quantity,
			Timestamp:  ts,
			PositionID: ctx.Position.ID,
			Reason:     reason,
		}
	}

	if price <= entry*s.stopLossRatio {
		return exit("Stop Loss")
	}

	cci, ok := Latest(CCI(ctx.Candles5m, s.period))
	if ok && cci < -100 {
		return exit("CCI Sell Signal")
	}

	profitPct := (price - entry) / entry * 100
	if profitPct >= s.takeProfitPct {
		return exit("Take Profit (10%)")
	}
	return nil
}
