// Package app wires configuration, logging, the registry client, and
// the rollup service into the shared core used by cmd/lda-server.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/sonsoflibertyy/lda/internal/clients/lda"
	"github.com/sonsoflibertyy/lda/internal/common"
	"github.com/sonsoflibertyy/lda/internal/interfaces"
	"github.com/sonsoflibertyy/lda/internal/services/rollup"
)

// App holds the initialized client and services.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Registry    interfaces.RegistryClient
	Rollups     interfaces.RollupService
	StartupTime time.Time
}

// NewApp loads configuration and initializes the client and services.
// configPath may be empty, in which case LDA_CONFIG and the development
// default are consulted.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("LDA_CONFIG")
	}
	if configPath == "" {
		configPath = "config/lda.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	client := lda.NewClient(config.Upstream.APIKey,
		lda.WithBaseURL(config.Upstream.BaseURL),
		lda.WithRateLimit(config.Upstream.RateLimit),
		lda.WithTimeout(config.Upstream.GetTimeout()),
		lda.WithRetries(config.Upstream.Retries),
		lda.WithLogger(logger),
	)

	return &App{
		Config:      config,
		Logger:      logger,
		Registry:    client,
		Rollups:     rollup.NewService(client, config.Rollup, logger),
		StartupTime: time.Now(),
	}, nil
}
