package config

import (
	"time"

	redisclient "github.com/vietddude/tipbot/internal/infra/redis"
	"github.com/vietddude/tipbot/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Ledger   LedgerConfig       `yaml:"ledger"`
	Bot      BotConfig          `yaml:"bot"`
	Telegram TelegramConfig     `yaml:"telegram"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// LedgerConfig holds settings for the remote custodial ledger API.
type LedgerConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// BotConfig holds command-processing settings shared by all transports.
type BotConfig struct {
	// Mention forms stripped from inbound text before parsing. All three
	// are filtered regardless of the originating platform.
	Mentions MentionConfig `yaml:"mentions"`
	// FeeBuffer is added to native transfer amounts during the local
	// pre-flight balance check, in SOL.
	FeeBuffer float64 `yaml:"fee_buffer"`
	// ExportRedactAfterSeconds is how long an exported private key stays
	// visible before the transport is asked to delete it.
	ExportRedactAfterSeconds int `yaml:"export_redact_after_seconds"`
	// ExplorerURL is the base URL used for wallet/transaction links.
	ExplorerURL string `yaml:"explorer_url"`
}

// MentionConfig holds the per-platform bot mention tokens.
type MentionConfig struct {
	Twitter  string `yaml:"twitter"`
	Telegram string `yaml:"telegram"`
	Discord  string `yaml:"discord"`
}

// All returns the configured, non-empty mention forms.
func (m MentionConfig) All() []string {
	var out []string
	for _, s := range []string{m.Twitter, m.Telegram, m.Discord} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TelegramConfig holds the Telegram transport settings.
type TelegramConfig struct {
	BotToken    string        `yaml:"bot_token"`
	BaseURL     string        `yaml:"base_url"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}
