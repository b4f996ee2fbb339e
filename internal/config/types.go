package config

import "time"

// Config is the top-level qarelay configuration, corresponding to .qarelay.yml.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	// APIKey is never written to disk; it comes from the environment.
	APIKey         string        `yaml:"-" koanf:"api_key"`
	BaseURL        string        `yaml:"base_url" koanf:"base_url"`
	Models         []string      `yaml:"models" koanf:"models"`
	SystemPrompt   string        `yaml:"system_prompt" koanf:"system_prompt"`
	MaxTokens      int           `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature    float64       `yaml:"temperature" koanf:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	Port           int           `yaml:"port" koanf:"port"`
	AuditEnabled   bool          `yaml:"audit_enabled" koanf:"audit_enabled"`
	AuditPath      string        `yaml:"audit_path" koanf:"audit_path"`
	// AuditRetention is how long dispatch entries are kept; 0 keeps them forever.
	AuditRetention time.Duration `yaml:"audit_retention" koanf:"audit_retention"`
}

// HasAPIKey reports whether an upstream credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}
