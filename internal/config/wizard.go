package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it. Values not asked for keep their defaults.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to qarelay! Let's configure the completion relay.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Endpoint.
	baseURLPrompt := promptui.Prompt{
		Label:   "OpenAI-compatible API base URL",
		Default: cfg.BaseURL,
	}
	baseURL, err := baseURLPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	cfg.BaseURL = baseURL

	// 2. Model fallback chain.
	modelsPrompt := promptui.Prompt{
		Label:   "Models in priority order (comma-separated)",
		Default: strings.Join(cfg.Models, ", "),
		Validate: func(s string) error {
			if len(splitAndTrim(s)) == 0 {
				return fmt.Errorf("at least one model is required")
			}
			return nil
		},
	}
	modelsStr, err := modelsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("models: %w", err)
	}
	cfg.Models = splitAndTrim(modelsStr)

	// 3. Listen port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("port must be a number between 0 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 4. Audit log.
	auditPrompt := promptui.Select{
		Label: "Record dispatch outcomes in the audit log?",
		Items: []string{"no", "yes"},
	}
	auditIdx, _, err := auditPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("audit selection: %w", err)
	}
	cfg.AuditEnabled = auditIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if os.Getenv(APIKeyEnvVar) == "" && os.Getenv("QARELAY_API_KEY") == "" {
		fmt.Printf("\nNote: Set %s in your environment before running qarelay server.\n", APIKeyEnvVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
