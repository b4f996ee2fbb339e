package cmd

import (
	"fmt"
	"time"

	"github.com/ziadkadry99/qarelay/internal/config"
	"github.com/ziadkadry99/qarelay/internal/llm"
	"github.com/ziadkadry99/qarelay/internal/qa"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `qarelay init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// settingsFromConfig extracts the dispatcher's view of the configuration.
func settingsFromConfig(cfg *config.Config) qa.Settings {
	return qa.Settings{
		APIKey:         cfg.APIKey,
		Models:         cfg.Models,
		SystemPrompt:   cfg.SystemPrompt,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
		RequestTimeout: cfg.RequestTimeout,
	}
}

// createDispatcherFromConfig wires the upstream client and dispatcher.
func createDispatcherFromConfig(cfg *config.Config) *qa.Dispatcher {
	provider := llm.NewChatClient(cfg.APIKey, cfg.BaseURL)
	return qa.NewDispatcher(provider, settingsFromConfig(cfg))
}

// handlerTimeout is the worst-case duration of one fallback loop plus slack.
func handlerTimeout(cfg *config.Config) time.Duration {
	return time.Duration(len(cfg.Models))*cfg.RequestTimeout + 5*time.Second
}

// retentionLabel describes an audit retention window for startup output.
func retentionLabel(d time.Duration) string {
	if d <= 0 {
		return "forever"
	}
	return d.String()
}
