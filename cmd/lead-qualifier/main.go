package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/lead-qualifier/internal/config"
	"github.com/mikey/lead-qualifier/internal/core"
	"github.com/mikey/lead-qualifier/internal/di"
	"github.com/mikey/lead-qualifier/internal/factory"
	"github.com/mikey/lead-qualifier/internal/logging"
	"github.com/mikey/lead-qualifier/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	level zap.AtomicLevel,
	logger *zap.Logger,
	server ports.SubmissionServer,
	dispatcher *core.Dispatcher,
	store factory.Store,
) error {
	defer logger.Sync()

	logging.WatchLevel(cfg, level, logger)

	if err := server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Let detached notifications finish before closing the store
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn("Abandoned in-flight notifications", zap.Error(err))
	}

	store.Stop()

	logger.Info("Shutdown complete")
	return nil
}
