package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (QARELAY_*). The API key falls back to
// GROQ_API_KEY when QARELAY_API_KEY is not set.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: QARELAY_BASE_URL -> base_url, etc.
	if err := k.Load(env.Provider("QARELAY_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "QARELAY_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// A model list coming from the environment arrives as one comma-separated string.
	if len(cfg.Models) == 1 && strings.Contains(cfg.Models[0], ",") {
		cfg.Models = splitAndTrim(cfg.Models[0])
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnvVar)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
// The API key is never persisted.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
// A missing API key is not a validation error: the service starts and
// reports the misconfiguration per request.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute URL", c.BaseURL)
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	for i, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("models[%d] is empty", i)
		}
	}

	if c.SystemPrompt == "" {
		return fmt.Errorf("system_prompt is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.AuditEnabled && c.AuditPath == "" {
		return fmt.Errorf("audit_path is required when audit is enabled")
	}

	if c.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative")
	}

	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
