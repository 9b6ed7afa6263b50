package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperkite/paperkite/app/replay"
	"github.com/paperkite/paperkite/pkg/config"
)

func main() {
	var (
		fromFlag  = flag.String("from", "", "start date (2006-01-02)")
		toFlag    = flag.String("to", "", "end date (2006-01-02), defaults to today")
		speedFlag = flag.Float64("speed", 10, "replay speed multiplier")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	to := time.Now().UTC()
	if *toFlag != "" {
		if to, err = time.Parse("2006-01-02", *toFlag); err != nil {
			slog.Error("Invalid -to date", "error", err)
			os.Exit(1)
		}
	}

	from := to.AddDate(0, 0, -cfg.Sim.HistoryDays)
	if *fromFlag != "" {
		if from, err = time.Parse("2006-01-02", *fromFlag); err != nil {
			slog.Error("Invalid -from date", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	runner, err := replay.InitRunner(ctx, *cfg, from, to, *speedFlag)
	if err != nil {
		slog.Error("Failed to init replay runner", "error", err)
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		slog.Error("Replay failed", "error", err)
		os.Exit(1)
	}
}
