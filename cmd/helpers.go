package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/llmstream/internal/config"
	"github.com/ziadkadry99/llmstream/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `llmstream init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLoggerFromConfig builds the logger; --verbose forces debug level.
func newLoggerFromConfig(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Logging
	if verbose {
		lc.Level = "debug"
	}
	return config.NewLogger(lc)
}

// createProviderFromConfig creates the streaming provider named in the config.
func createProviderFromConfig(cfg *config.Config, logger *zap.Logger) (llm.StreamProvider, error) {
	return llm.NewStreamProvider(string(cfg.Provider),
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithSystemPolicy(cfg.Policy()),
		llm.WithLogger(logger),
	)
}

// setup loads config, logger and provider for commands that stream.
func setup() (*config.Config, *zap.Logger, llm.StreamProvider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLoggerFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	provider, err := createProviderFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return cfg, logger, provider, nil
}
