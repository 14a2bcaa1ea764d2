// ====================================
// File: cmd/launchpad/main.go
// ====================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launchpad/internal/launchpad"
)

func main() {
	// Setup context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize bootstrap logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	logger.Info("Starting token launchpad")

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Create and initialize the runner
	runner := launchpad.NewRunner(logger)
	if err := runner.Initialize(configPath); err != nil {
		logger.Error("Failed to initialize launchpad", zap.Error(err))
		os.Exit(1)
	}
	defer runner.Shutdown()

	// Run the scenario
	if err := runner.Run(ctx); err != nil {
		logger.Error("Launchpad execution error", zap.Error(err))
		os.Exit(1)
	}
}
