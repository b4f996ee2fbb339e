package cmd

import (
	"testing"
	"time"

	"github.com/ziadkadry99/qarelay/internal/config"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIKey = "k"

	s := settingsFromConfig(cfg)
	if s.APIKey != "k" {
		t.Errorf("APIKey = %q", s.APIKey)
	}
	if len(s.Models) != len(cfg.Models) || s.Models[0] != cfg.Models[0] {
		t.Errorf("Models = %v, want %v", s.Models, cfg.Models)
	}
	if s.SystemPrompt != cfg.SystemPrompt || s.MaxTokens != cfg.MaxTokens || s.Temperature != cfg.Temperature {
		t.Errorf("generation settings not copied: %+v", s)
	}
	if s.RequestTimeout != cfg.RequestTimeout {
		t.Errorf("RequestTimeout = %s", s.RequestTimeout)
	}
}

func TestHandlerTimeoutCoversEveryModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"a", "b", "c"}
	cfg.RequestTimeout = 10 * time.Second

	if got := handlerTimeout(cfg); got != 35*time.Second {
		t.Errorf("handlerTimeout = %s, want 35s", got)
	}
}

func TestCreateDispatcherFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	d := createDispatcherFromConfig(cfg)
	if got := d.Models(); len(got) != len(cfg.Models) {
		t.Errorf("Models() = %v, want %v", got, cfg.Models)
	}
}

func TestRetentionLabel(t *testing.T) {
	if got := retentionLabel(0); got != "forever" {
		t.Errorf("retentionLabel(0) = %q, want forever", got)
	}
	if got := retentionLabel(720 * time.Hour); got != "720h0m0s" {
		t.Errorf("retentionLabel(720h) = %q", got)
	}
}
