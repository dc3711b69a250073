package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kapu/handheld-deals-go/internal/app"
	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/health"
)

var version = "dev" // -ldflags "-X main.version=..."

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.ProvideLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	health.Init(version)
	logger.Info("handheld_deals_starting", "version", version, "log_level", cfg.LogLevel)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Build)
	runtime, err := app.BuildRuntime(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("runtime_build_failed", "error", err)
		os.Exit(1)
	}
	defer runtime.Close()

	runtime.Run()
}
