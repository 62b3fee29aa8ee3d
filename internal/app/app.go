// Package app wires configuration, storage, clients, and services into one
// shared core used by cmd/folio-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliotrack/folio/internal/clients/marketdata"
	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/services/performance"
	"github.com/foliotrack/folio/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	MarketClient       interfaces.MarketDataClient
	PerformanceService interfaces.PerformanceService
	StartupTime        time.Time

	scheduler *Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: provided path, FOLIO_CONFIG, binary dir, then the
	// development fallback.
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.MarketData.APIKey == "" {
		logger.Warn().Msg("Market data API key not configured - daily closes will fail without prices")
	}

	clientOpts := []marketdata.ClientOption{
		marketdata.WithLogger(logger),
	}
	if config.MarketData.BaseURL != "" {
		clientOpts = append(clientOpts, marketdata.WithBaseURL(config.MarketData.BaseURL))
	}
	if config.MarketData.RateLimit > 0 {
		clientOpts = append(clientOpts, marketdata.WithRateLimit(config.MarketData.RateLimit))
	}
	if timeout := config.MarketData.GetTimeout(); timeout > 0 {
		clientOpts = append(clientOpts, marketdata.WithTimeout(timeout))
	}
	marketClient := marketdata.NewClient(config.MarketData.APIKey, clientOpts...)

	performanceService := performance.NewService(storageManager, marketClient, config.Engine, config.Accounts, logger)

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		MarketClient:       marketClient,
		PerformanceService: performanceService,
		StartupTime:        startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartScheduler launches the cron scheduler for daily closes and period
// consolidation.
func (a *App) StartScheduler() error {
	scheduler, err := NewScheduler(a.PerformanceService, a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = scheduler
	a.scheduler.Start()
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
