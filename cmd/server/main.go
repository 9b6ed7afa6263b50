package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperkite/paperkite/app/server"
	"github.com/paperkite/paperkite/pkg/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	relay, err := server.InitServer(ctx, *cfg)
	if err != nil {
		slog.Error("Failed to init relay", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := relay.Run(ctx); err != nil {
			slog.Error("Relay stopped with error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit

	slog.Info("Shutting down relay...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	relay.Stop(shutdownCtx)

	slog.Info("Relay stopped")
}
