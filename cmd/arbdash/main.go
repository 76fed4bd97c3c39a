package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rewired-gh/arbdash/internal/backend"
	"github.com/rewired-gh/arbdash/internal/chart"
	"github.com/rewired-gh/arbdash/internal/config"
	"github.com/rewired-gh/arbdash/internal/logger"
	"github.com/rewired-gh/arbdash/internal/metrics"
	"github.com/rewired-gh/arbdash/internal/server"
	"github.com/rewired-gh/arbdash/internal/shell"
	"github.com/rewired-gh/arbdash/internal/telegram"
	"github.com/rewired-gh/arbdash/internal/view"
)

var (
	configPath = flag.String("config", "", "Path to configuration file (defaults and ARBDASH_* environment when empty)")
	envPath    = flag.String("env", ".env", "Path to an optional .env file")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.Fatalf("Failed to set log output: %v", err)
	}
	if *configPath != "" {
		logger.Info("Configuration loaded from %s", *configPath)
	} else {
		logger.Info("Configuration loaded from defaults and environment")
	}

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientConfig := backend.ClientConfig{
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
	}

	if cfg.Telegram.Enabled {
		telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		alerter := telegram.NewAlerter(telegramClient)
		telegramClient.SetStatus(alerter.Status)
		telegramClient.ListenForCommands(ctx)
		clientConfig.Observer = alerter
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, clientConfig)

	renderer := view.NewRenderer(view.Options{
		Pairs:      cfg.Dashboard.Pairs,
		Exchangers: cfg.Dashboard.Exchangers,
		Layout: chart.Layout{
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
			Margins: chart.Margins{
				Top:    cfg.Chart.MarginTop,
				Right:  cfg.Chart.MarginRight,
				Bottom: cfg.Chart.MarginBottom,
				Left:   cfg.Chart.MarginLeft,
			},
			TimeTicks:  cfg.Chart.TimeTicks,
			PriceTicks: cfg.Chart.PriceTicks,
		},
	})

	srv := server.New(cfg.Server, shell.Options{
		Fetcher:         backendClient,
		Renderer:        renderer,
		DefaultLocation: cfg.DefaultLocation(),
	}, cfg.Dashboard.Pairs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	logger.Info("Serving dashboard on http://%s (backend: %s)", srv.Address(), cfg.Backend.BaseURL)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Dashboard server failed: %v", err)
	}
	logger.Info("Service stopped")
}
