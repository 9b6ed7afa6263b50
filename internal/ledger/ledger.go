// Package ledger is the cash+positions model behind the paper-trading
// simulator. It is deliberately decoupled from any rendering or transport
// layer: callers apply trades and mark prices, observers read snapshots.
// All money math is decimal to keep position accounting exact.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paperkite/paperkite/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeType is the direction of a trade.
type TradeType string

const (
	// Buy opens or adds to a position.
	Buy TradeType = "BUY"
	// Sell reduces or closes a position.
	Sell TradeType = "SELL"
)

// Trade is an immutable, append-only trade record. It is created by a
// strategy evaluator, applied exactly once to the ledger and retained in
// the trade history; it is never mutated after creation.
type Trade struct {
	ID          string
	Type        TradeType
	Price       decimal.Decimal
	Quantity    int64
	Timestamp   time.Time
	StrategyTag string
	// PositionID ties an exit to the position opened at entry time. When
	// empty, SELL matching falls back to the strategy tag family.
	PositionID string
	// Reason annotates exits (stop loss, signal, take profit) for the
	// history log. Informational only; never used for matching.
	Reason string
}

// NewTrade creates a trade record with a fresh ID.
func NewTrade(tradeType TradeType, price decimal.Decimal, quantity int64, ts time.Time, strategyTag string) Trade {
	return Trade{
		ID:          uuid.NewString(),
		Type:        tradeType,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   ts,
		StrategyTag: strategyTag,
	}
}

// Position is an open holding attributed to one strategy. ID is assigned
// at entry and stable across partial exits.
type Position struct {
	ID            string
	Symbol        string
	Quantity      int64
	AvgPrice      decimal.Decimal
	StrategyTag   string
	EntryTime     time.Time
	UnrealizedPnL decimal.Decimal
}

// Portfolio is a read-only snapshot of the ledger state.
type Portfolio struct {
	Cash               decimal.Decimal
	Positions          []Position
	RealizedPnL        decimal.Decimal
	UnrealizedPnL      decimal.Decimal
	TotalEquity        decimal.Decimal
	ReturnsPercent     decimal.Decimal
	PeakEquity         decimal.Decimal
	MaxDrawdownPercent decimal.Decimal
}

// Ledger applies trade events to a cash+positions model and recomputes
// derived fields (equity, drawdown) from authoritative state on every
// update. It must only be mutated from a single goroutine; the engine
// serializes strategy-triggered trades.
type Ledger struct {
	symbol         string
	initialCapital decimal.Decimal

	cash        decimal.Decimal
	positions   []*Position
	realized    decimal.Decimal
	peakEquity  decimal.Decimal
	maxDrawdown decimal.Decimal
	lastPrice   decimal.Decimal
	trades      []Trade
}

// New creates a ledger with the given starting cash.
func New(symbol string, initialCapital decimal.Decimal) *Ledger {
	l := &Ledger{symbol: symbol, initialCapital: initialCapital}
	l.Reset()
	return l
}

// Reset returns the ledger to its initial state: full cash, no positions,
// no trades, drawdown history cleared.
func (l *Ledger) Reset() {
	l.cash = l.initialCapital
	l.positions = nil
	l.realized = decimal.Zero
	l.peakEquity = l.initialCapital
	l.maxDrawdown = decimal.Zero
	l.lastPrice = decimal.Zero
	l.trades = nil
}

// ApplyTrade applies a BUY or SELL to the ledger. Rejected trades
// (insufficient funds, no matching position) leave the ledger unchanged
// and surface a coded error; they are reportable conditions, not silent
// drops. Accepted trades are appended to the history.
func (l *Ledger) ApplyTrade(t Trade) (Portfolio, error) {
	if t.Quantity <= 0 || !t.Price.IsPositive() {
		return l.Snapshot(), errors.NewDomainError(
			fmt.Sprintf("trade %s has non-positive price or quantity", t.ID),
			errors.InvalidTrade, "",
		)
	}

	switch t.Type {
	case Buy:
		if err := l.applyBuy(&t); err != nil {
			return l.Snapshot(), err
		}
	case Sell:
		if err := l.applySell(&t); err != nil {
			return l.Snapshot(), err
		}
	default:
		return l.Snapshot(), errors.NewDomainError(
			fmt.Sprintf("unknown trade type %q", t.Type),
			errors.InvalidTrade, "type",
		)
	}

	l.trades = append(l.trades, t)
	l.lastPrice = t.Price
	l.recompute()
	return l.Snapshot(), nil
}

func (l *Ledger) applyBuy(t *Trade) error {
	cost := t.Price.Mul(decimal.NewFromInt(t.Quantity))
	if l.cash.LessThan(cost) {
		return errors.NewDomainError(
			fmt.Sprintf("cash %s cannot cover cost %s", l.cash, cost),
			errors.InsufficientFunds, "",
		)
	}

	l.cash = l.cash.Sub(cost)

	if pos := l.findPosition(t.PositionID, t.StrategyTag); pos != nil {
		// quantity-weighted average price on same-direction adds
		oldValue := pos.AvgPrice.Mul(decimal.NewFromInt(pos.Quantity))
		newQuantity := pos.Quantity + t.Quantity
		pos.AvgPrice = oldValue.Add(cost).Div(decimal.NewFromInt(newQuantity))
		pos.Quantity = newQuantity
		t.PositionID = pos.ID
		return nil
	}

	pos := &Position{
		ID:          newPositionID(t.Timestamp),
		Symbol:      l.symbol,
		Quantity:    t.Quantity,
		AvgPrice:    t.Price,
		StrategyTag: t.StrategyTag,
		EntryTime:   t.Timestamp,
	}
	l.positions = append(l.positions, pos)
	t.PositionID = pos.ID
	return nil
}

func (l *Ledger) applySell(t *Trade) error {
	pos := l.findPosition(t.PositionID, t.StrategyTag)
	if pos == nil || pos.Quantity <= 0 {
		return errors.NewDomainError(
			fmt.Sprintf("no open position for strategy %q", t.StrategyTag),
			errors.NoMatchingPosition, "strategy_tag",
		)
	}

	matched := t.Quantity
	if pos.Quantity < matched {
		matched = pos.Quantity
	}

	realized := t.Price.Sub(pos.AvgPrice).Mul(decimal.NewFromInt(matched))
	l.realized = l.realized.Add(realized)
	l.cash = l.cash.Add(t.Price.Mul(decimal.NewFromInt(t.Quantity)))

	pos.Quantity -= matched
	if pos.Quantity == 0 {
		l.removePosition(pos.ID)
	}
	t.PositionID = pos.ID
	return nil
}

// MarkPrice recomputes unrealized P&L, equity, peak and drawdown against a
// new market price. Called on every price update, not only on trades, so
// equity is never derived from stale prices.
func (l *Ledger) MarkPrice(price decimal.Decimal) Portfolio {
	if price.IsPositive() {
		l.lastPrice = price
	}
	l.recompute()
	return l.Snapshot()
}

// Position returns the open position matching a position ID or strategy
// tag family, or false when there is none.
func (l *Ledger) Position(positionID, strategyTag string) (Position, bool) {
	pos := l.findPosition(positionID, strategyTag)
	if pos == nil {
		return Position{}, false
	}
	return *pos, true
}

// Trades returns the trade history in application order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Snapshot returns the current portfolio state.
func (l *Ledger) Snapshot() Portfolio {
	positions := make([]Position, 0, len(l.positions))
	unrealized := decimal.Zero
	marketValue := decimal.Zero
	for _, pos := range l.positions {
		positions = append(positions, *pos)
		unrealized = unrealized.Add(pos.UnrealizedPnL)
		if l.lastPrice.IsPositive() {
			marketValue = marketValue.Add(l.lastPrice.Mul(decimal.NewFromInt(pos.Quantity)))
		} else {
			marketValue = marketValue.Add(pos.AvgPrice.Mul(decimal.NewFromInt(pos.Quantity)))
		}
	}

	equity := l.cash.Add(marketValue)
	returns := decimal.Zero
	if l.initialCapital.IsPositive() {
		returns = equity.Sub(l.initialCapital).Div(l.initialCapital).Mul(decimal.NewFromInt(100))
	}

	return Portfolio{
		Cash:               l.cash,
		Positions:          positions,
		RealizedPnL:        l.realized,
		UnrealizedPnL:      unrealized,
		TotalEquity:        equity,
		ReturnsPercent:     returns,
		PeakEquity:         l.peakEquity,
		MaxDrawdownPercent: l.maxDrawdown,
	}
}

// recompute refreshes per-position unrealized P&L and the monotonic
// peak/drawdown pair. Peak updates before drawdown is computed; max
// drawdown only ever grows within one ledger lifetime.
func (l *Ledger) recompute() {
	marketValue := decimal.Zero
	for _, pos := range l.positions {
		price := l.lastPrice
		if !price.IsPositive() {
			price = pos.AvgPrice
		}
		quantity := decimal.NewFromInt(pos.Quantity)
		pos.UnrealizedPnL = price.Sub(pos.AvgPrice).Mul(quantity)
		marketValue = marketValue.Add(price.Mul(quantity))
	}

	equity := l.cash.Add(marketValue)
	if equity.GreaterThan(l.peakEquity) {
		l.peakEquity = equity
	}
	if l.peakEquity.IsPositive() {
		drawdown := l.peakEquity.Sub(equity).Div(l.peakEquity).Mul(decimal.NewFromInt(100))
		if drawdown.GreaterThan(l.maxDrawdown) {
			l.maxDrawdown = drawdown
		}
	}
}

func (l *Ledger) findPosition(positionID, strategyTag string) *Position {
	if positionID != "" {
		for _, pos := range l.positions {
			if pos.ID == positionID {
				return pos
			}
		}
		return nil
	}
	for _, pos := range l.positions {
		if pos.StrategyTag == strategyTag && pos.Quantity > 0 {
			return pos
		}
	}
	return nil
}

func (l *Ledger) removePosition(id string) {
	for i, pos := range l.positions {
		if pos.ID == id {
			l.positions = append(l.positions[:i], l.positions[i+1:]...)
			return
		}
	}
}
