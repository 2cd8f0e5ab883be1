package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lotwatch/internal/checker"
	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/notify"
	"lotwatch/pkg/models"
)

// Exit codes for scheduled runs: 0 clean and not found, 1 vehicle found on
// at least one site, 2 configuration or runtime failure.
const (
	exitNotFound = 0
	exitFound    = 1
	exitError    = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return exitError
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()

	if !cfg.HasIdentifier() {
		logger.Error("No vehicle identifier configured: set CAR_VIN and/or CAR_PLATE")
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ident := models.Identifier{
		VIN:   cfg.Vehicle.VIN,
		Plate: cfg.Vehicle.Plate,
	}

	result, err := checker.NewChecker(cfg, logger).Check(ctx, ident)
	if err != nil {
		logger.Error("Check run failed", map[string]interface{}{"error": err.Error()})
		return exitError
	}

	for name, verdict := range result.Verdicts {
		logger.Info("Verdict", map[string]interface{}{
			"source":  name,
			"found":   verdict.Found,
			"url":     verdict.URL,
			"details": verdict.Details,
		})
	}

	if !result.AnyFound() {
		logger.Info("Vehicle not found on any monitored site")
		return exitNotFound
	}

	logger.Warn("Vehicle FOUND on marketplace listings", map[string]interface{}{
		"sources": len(result.Findings),
	})

	notifier := notify.NewTelegramNotifier(cfg, logger)
	if notifier.Configured() {
		if err := notifier.SendAlert(ctx, result.Findings); err != nil {
			logger.Error("Failed to deliver alert", map[string]interface{}{"error": err.Error()})
		}
	} else {
		logger.Warn("Telegram not configured; findings reported via exit code only")
	}

	return exitFound
}
