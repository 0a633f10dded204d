// Package app wires configuration, providers, services and storage into the
// shared core used by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fundwatch/internal/clients/eastmoney"
	"github.com/bobmcallan/fundwatch/internal/clients/sina"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/quote"
	"github.com/bobmcallan/fundwatch/internal/services/session"
	"github.com/bobmcallan/fundwatch/internal/services/valuation"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.HoldingStore
	Estimator   interfaces.QuoteProvider
	Snapshot    interfaces.QuoteProvider
	Classifier  *session.Classifier
	Quotes      *quote.Service
	Valuation   *valuation.Service
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, FUNDWATCH_CONFIG,
// fundwatch.toml next to the binary, then config/fundwatch.toml.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FUNDWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "fundwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundwatch.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and builds every component.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	configPath = resolveConfigPath(configPath)
	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Relative holdings path is relative to the config file when one exists
	if p := config.Storage.HoldingsPath; p != "" && !filepath.IsAbs(p) {
		if _, err := os.Stat(configPath); err == nil {
			config.Storage.HoldingsPath = filepath.Join(filepath.Dir(configPath), p)
		}
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return newApp(config, logger, startupStart)
}

// NewAppWithConfig builds an App from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	if logger == nil {
		logger = common.NewLoggerFromConfig(config.Logging)
	}
	return newApp(config, logger, time.Now())
}

func newApp(config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	store, err := storage.NewFileStore(logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	estimatorCfg := config.Clients.Estimator
	estimator := eastmoney.NewClient(
		eastmoney.WithBaseURL(estimatorCfg.BaseURL),
		eastmoney.WithTimeout(estimatorCfg.GetTimeout()),
		eastmoney.WithRateLimit(estimatorCfg.RateLimit),
		eastmoney.WithLogger(logger),
	)

	snapshotCfg := config.Clients.Snapshot
	snapshot := sina.NewClient(
		sina.WithBaseURL(snapshotCfg.BaseURL),
		sina.WithTimeout(snapshotCfg.GetTimeout()),
		sina.WithRateLimit(snapshotCfg.RateLimit),
		sina.WithLogger(logger),
	)

	classifier := session.NewClassifier(config.Valuation.GetLocation())
	quotes := quote.NewService(estimator, snapshot, classifier, logger)
	valuator := valuation.NewService(quotes, classifier, config.Valuation.Workers, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Estimator:   estimator,
		Snapshot:    snapshot,
		Classifier:  classifier,
		Quotes:      quotes,
		Valuation:   valuator,
		StartupTime: startupStart,
	}

	logger.Info().
		Str("holdings", config.Storage.HoldingsPath).
		Int("workers", config.Valuation.Workers).
		Str("timezone", classifier.Location().String()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Valuate loads the stored holdings and values them.
func (a *App) Valuate(ctx context.Context) (*models.Valuation, error) {
	holdings, err := a.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return a.Valuation.Valuate(ctx, holdings)
}

// Close releases resources held by the App.
func (a *App) Close() {
	a.Logger.Debug().Msg("App closed")
}
