package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Ledger.Timeout == 0 {
		cfg.Ledger.Timeout = 30 * time.Second
	}
	if cfg.Bot.FeeBuffer == 0 {
		cfg.Bot.FeeBuffer = 0.000005
	}
	if cfg.Bot.ExportRedactAfterSeconds == 0 {
		cfg.Bot.ExportRedactAfterSeconds = 60
	}
	if cfg.Bot.ExplorerURL == "" {
		cfg.Bot.ExplorerURL = "https://solscan.io"
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 30 * time.Second
	}

	if cfg.Ledger.URL == "" {
		return nil, fmt.Errorf("ledger.url is required")
	}

	return &cfg, nil
}
