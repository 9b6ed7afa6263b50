// Package replay assembles the backtest runner: series fetch, clocked
// replay through the strategies and a final trade and portfolio report.
package replay

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperkite/paperkite/internal/bootstrap"
	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/engine"
	replayclock "github.com/paperkite/paperkite/internal/replay"
	"github.com/paperkite/paperkite/internal/strategy"
	"github.com/paperkite/paperkite/internal/usecase/history"
	"github.com/paperkite/paperkite/pkg/config"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/questdb"
	"github.com/paperkite/paperkite/pkg/timeframe"
)

// Runner drives a full backtest over a date range.
type Runner struct {
	Config config.Config
	From   time.Time
	To     time.Time
	Speed  float64

	logger    logger.Interface
	container bootstrap.Bootstrap
}

// InitRunner builds the runner. Redis is not needed for a backtest, so
// only QuestDB and the broker are wired.
func InitRunner(ctx context.Context, cfg config.Config, from, to time.Time, speed float64) (*Runner, error) {
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		return nil, err
	}

	questdbClient, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		Config: cfg,
		From:   from,
		To:     to,
		Speed:  speed,
		logger: log,
	}
	runner.container = runner.container.Init(bootstrap.BootstrapConfig{
		QuestDB: questdbClient,
		Broker:  kite.NewClient(cfg.Kite),
		Logger:  log,
	})

	return runner, nil
}

// Run fetches both series, replays them to the end and prints the trade
// log and portfolio summary.
func (r *Runner) Run(ctx context.Context) error {
	defer r.container.QuestDB.Close()

	series5m, err := r.fetch(ctx, timeframe.Minute5)
	if err != nil {
		return err
	}
	series15m, err := r.fetch(ctx, timeframe.Minute15)
	if err != nil {
		return err
	}
	if len(series5m) == 0 {
		return fmt.Errorf("no candles for %s between %s and %s",
			r.Config.Sim.Symbol, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}

	strategies := []strategy.Strategy{
		strategy.NewRSISMA(r.Config.Sim.TradeQuantity),
		strategy.NewCCIMomentum(r.Config.Sim.TradeQuantity),
	}

	done := make(chan engine.Snapshot, 1)
	lastIndex := len(series5m) - 1

	backtest := engine.NewBacktest(
		r.logger,
		r.Config.Sim.Symbol,
		series5m, series15m,
		decimal.NewFromFloat(r.Config.Sim.InitialCapital),
		strategies,
		replayclock.DefaultOptions(),
		func(snap engine.Snapshot) {
			if snap.Index >= lastIndex {
				select {
				case done <- snap:
				default:
				}
			}
		},
	)

	backtest.SetSpeed(r.Speed)
	backtest.Play()

	select {
	case <-ctx.Done():
		backtest.Pause()
		return ctx.Err()
	case final := <-done:
		r.report(final)
		return nil
	}
}

func (r *Runner) fetch(ctx context.Context, tf timeframe.Timeframe) (candle.Series, error) {
	return r.container.Usecase.HistoryUsecase.GetSeries(ctx, history.Request{
		Symbol:          r.Config.Sim.Symbol,
		InstrumentToken: r.Config.Sim.InstrumentToken,
		Timeframe:       tf,
		From:            r.From,
		To:              r.To,
	})
}

func (r *Runner) report(snap engine.Snapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TIME\tSIDE\tPRICE\tQTY\tSTRATEGY\tREASON")
	for _, trade := range snap.Trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			trade.Timestamp.Format("2006-01-02 15:04"),
			trade.Type,
			trade.Price.StringFixed(2),
			trade.Quantity,
			trade.StrategyTag,
			trade.Reason,
		)
	}
	w.Flush()

	p := snap.Portfolio
	fmt.Printf("\ntrades: %d\n", len(snap.Trades))
	fmt.Printf("cash: %s\n", p.Cash.StringFixed(2))
	fmt.Printf("realized pnl: %s\n", p.RealizedPnL.StringFixed(2))
	fmt.Printf("total equity: %s\n", p.TotalEquity.StringFixed(2))
	fmt.Printf("returns: %s%%\n", p.ReturnsPercent.StringFixed(2))
	fmt.Printf("max drawdown: %s%%\n", p.MaxDrawdownPercent.StringFixed(2))
}
