package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
ledger:
  url: http://localhost:9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Ledger.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Ledger.Timeout)
	}
	if cfg.Bot.FeeBuffer != 0.000005 {
		t.Errorf("expected default fee buffer, got %v", cfg.Bot.FeeBuffer)
	}
	if cfg.Bot.ExportRedactAfterSeconds != 60 {
		t.Errorf("expected default redact delay 60s, got %d", cfg.Bot.ExportRedactAfterSeconds)
	}
	if cfg.Bot.ExplorerURL != "https://solscan.io" {
		t.Errorf("unexpected explorer url %q", cfg.Bot.ExplorerURL)
	}
	if cfg.Telegram.BaseURL != "https://api.telegram.org" {
		t.Errorf("unexpected telegram base url %q", cfg.Telegram.BaseURL)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_LEDGER_URL", "http://ledger.internal:9000")
	t.Setenv("TEST_LEDGER_KEY", "sekrit")

	path := writeConfig(t, `
ledger:
  url: ${TEST_LEDGER_URL}
  api_key: ${TEST_LEDGER_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ledger.URL != "http://ledger.internal:9000" {
		t.Errorf("env var not expanded: %q", cfg.Ledger.URL)
	}
	if cfg.Ledger.APIKey != "sekrit" {
		t.Errorf("env var not expanded: %q", cfg.Ledger.APIKey)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
ledger:
  url: http://localhost:9000
  timeout: 10s
bot:
  mentions:
    twitter: "@tipbot"
    telegram: "@tip_bot"
    discord: "<@987654321>"
  fee_buffer: 0.00001
telegram:
  bot_token: abc123
  poll_timeout: 20s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Ledger.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Ledger.Timeout)
	}
	if got := cfg.Bot.Mentions.All(); len(got) != 3 {
		t.Errorf("expected 3 mention forms, got %v", got)
	}
	if cfg.Bot.FeeBuffer != 0.00001 {
		t.Errorf("expected fee buffer 0.00001, got %v", cfg.Bot.FeeBuffer)
	}
	if cfg.Telegram.BotToken != "abc123" {
		t.Errorf("unexpected bot token %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.PollTimeout != 20*time.Second {
		t.Errorf("expected poll timeout 20s, got %v", cfg.Telegram.PollTimeout)
	}
}

func TestLoad_MissingLedgerURL(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing ledger.url")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMentionConfig_AllSkipsEmpty(t *testing.T) {
	m := MentionConfig{Telegram: "@tip_bot"}
	got := m.All()
	if len(got) != 1 || got[0] != "@tip_bot" {
		t.Errorf("expected only the configured mention, got %v", got)
	}
}
