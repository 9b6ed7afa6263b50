// Package server assembles the live relay: historical warmup, tick
// ingress, paper-trading session and the websocket broadcast surface.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperkite/paperkite/internal/bootstrap"
	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/internal/consumer"
	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/internal/engine"
	"github.com/paperkite/paperkite/internal/instrument"
	"github.com/paperkite/paperkite/internal/strategy"
	"github.com/paperkite/paperkite/internal/stream"
	"github.com/paperkite/paperkite/internal/usecase/history"
	"github.com/paperkite/paperkite/pkg/config"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/questdb"
	"github.com/paperkite/paperkite/pkg/redis"
	"github.com/paperkite/paperkite/pkg/timeframe"
)

// Server is the live relay process.
type Server struct {
	Config config.Config

	logger    logger.Interface
	container bootstrap.Bootstrap
	live      *engine.Live

	ticker       *stream.TickerClient
	tickConsumer *consumer.TickConsumer
	httpServer   *http.Server
}

// InitServer builds the relay from configuration. The historical seed
// windows are fetched before the first tick is accepted so strategies
// have enough candles to evaluate from the start.
func InitServer(ctx context.Context, cfg config.Config) (*Server, error) {
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		return nil, err
	}

	questdbClient, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(log, &cfg.Redis)
	if err := redisClient.Connect(ctx); err != nil {
		return nil, err
	}

	broker := kite.NewClient(cfg.Kite)

	server := &Server{
		Config: cfg,
		logger: log,
	}
	server.container = server.container.Init(bootstrap.BootstrapConfig{
		QuestDB:             questdbClient,
		Redis:               redisClient,
		Broker:              broker,
		Logger:              log,
		InstrumentKeyPrefix: cfg.Redis.PrefixKey,
	})

	hist5, hist15, err := server.warmup(ctx)
	if err != nil {
		return nil, err
	}

	strategies := []strategy.Strategy{
		strategy.NewRSISMA(cfg.Sim.TradeQuantity),
		strategy.NewCCIMomentum(cfg.Sim.TradeQuantity),
	}

	hub := server.container.Hub
	server.live = engine.NewLive(log, engine.LiveConfig{
		Symbol:         cfg.Sim.Symbol,
		InitialCapital: decimal.NewFromFloat(cfg.Sim.InitialCapital),
		Historical5m:   hist5,
		Historical15m:  hist15,
		TickBufferSize: cfg.Sim.TickBufferSize,
		EvalInterval:   time.Duration(cfg.Sim.EvalIntervalMS) * time.Millisecond,
	}, strategies, func(snap engine.Snapshot) {
		hub.Broadcast(snap)
	})

	if cfg.TickKafka.Enabled {
		server.tickConsumer = consumer.NewTickConsumer(cfg.TickKafka, log, server.live.HandleTick)
	} else {
		server.ticker = stream.NewTickerClient(log, cfg.Feed)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/instruments/status", server.handleInstrumentStatus)
	mux.HandleFunc("/instruments/refresh", server.handleInstrumentRefresh)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: mux,
	}

	return server, nil
}

// Run starts the broadcast hub, the tick ingress and the HTTP surface.
// It blocks until the HTTP server stops.
func (s *Server) Run(ctx context.Context) error {
	go s.container.Hub.Run(ctx)

	if s.tickConsumer != nil {
		go s.tickConsumer.Start(ctx)
		go s.tickConsumer.Subscribe(ctx)
	} else {
		go func() {
			if err := s.ticker.Run(ctx, s.live.HandleTick); err != nil {
				s.logger.Error(err, logger.NewField("action", "tick_feed"))
			}
		}()
	}

	s.logger.Info("relay started",
		logger.NewField("app", s.Config.App.Name),
		logger.NewField("environment", s.Config.App.Environment),
		logger.NewField("port", s.Config.App.Port),
		logger.NewField("symbol", s.Config.Sim.Symbol),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the ingress and HTTP surface down.
func (s *Server) Stop(ctx context.Context) {
	if s.tickConsumer != nil {
		if err := s.tickConsumer.Stop(); err != nil {
			s.logger.Error(err, logger.NewField("action", "consumer_stop"))
		}
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error(err, logger.NewField("action", "http_shutdown"))
	}
	if err := s.container.Redis.Disconnect(ctx); err != nil {
		s.logger.Error(err, logger.NewField("action", "redis_disconnect"))
	}
	s.container.QuestDB.Close()
	s.logger.Sync()
}

func (s *Server) handleInstrumentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.container.Usecase.Instruments.Status(r.Context(), s.Config.Sim.Exchange)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleInstrumentRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.RefreshInstruments(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RefreshInstruments fetches the instrument dump for the configured
// exchange and repopulates the Redis cache.
func (s *Server) RefreshInstruments(ctx context.Context) error {
	instruments, err := s.container.Broker.GetInstruments(ctx, s.Config.Sim.Exchange)
	if err != nil {
		return err
	}
	chain := instrument.FilterOptionChain(instruments, s.Config.Sim.Underlying)
	return s.container.Usecase.Instruments.Populate(ctx, s.Config.Sim.Exchange, chain)
}

func (s *Server) warmup(ctx context.Context) (candle.Series, candle.Series, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -s.Config.Sim.HistoryDays)

	hist5, err := s.container.Usecase.HistoryUsecase.GetSeries(ctx, history.Request{
		Symbol:          s.Config.Sim.Symbol,
		InstrumentToken: s.Config.Sim.InstrumentToken,
		Timeframe:       timeframe.Minute5,
		From:            from,
		To:              to,
	})
	if err != nil {
		return nil, nil, err
	}

	hist15, err := s.container.Usecase.HistoryUsecase.GetSeries(ctx, history.Request{
		Symbol:          s.Config.Sim.Symbol,
		InstrumentToken: s.Config.Sim.InstrumentToken,
		Timeframe:       timeframe.Minute15,
		From:            from,
		To:              to,
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("historical warmup loaded",
		logger.NewField("candles_5m", len(hist5)),
		logger.NewField("candles_15m", len(hist15)),
	)
	return hist5, hist15, nil
}
