package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cliff-dev/PayFLow/internal/config"
	"github.com/cliff-dev/PayFLow/internal/server"
	"github.com/cliff-dev/PayFLow/internal/stellar"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	gateway, err := stellar.New(stellar.Options{
		HorizonURL:        cfg.HorizonURL,
		NetworkPassphrase: cfg.NetworkPassphrase,
		SenderSecret:      cfg.SenderSecret,
		FriendbotURL:      cfg.FriendbotURL,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize settlement gateway", "error", err)
		os.Exit(1)
	}

	serverInstance, port, err := server.StartServer(cfg, gateway)
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("Server started successfully", "port", port)

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := serverInstance.Stop(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
