package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "FRONTEND_URL", "DB_PATH", "SESSION_TTL", "SESSION_SWEEP_INTERVAL",
	"MAX_REQUEST_BODY_SIZE", "API_KEY", "GEMINI_API_KEY", "GEMINI_MODEL",
	"GEMINI_BASE_URL", "GEMINI_TIMEOUT", "ASSISTANT_NAME", "CHAT_RATE_LIMIT",
	"CHAT_RATE_WINDOW", "CONVERSATION_LOG_ENABLED", "CONVERSATION_LOG_DIR",
	"CONVERSATION_LOG_GLOBAL_ENABLED", "CONVERSATION_LOG_GLOBAL_PATH",
	"CONVERSATION_LOG_QUEUE_SIZE", "APP_ENV", ConfigFileEnv,
}

// clearEnv unsets every key Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitcoach.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != ":memory:" {
		t.Fatalf("unexpected defaults: port=%q db=%q", cfg.Port, cfg.DBPath)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" || cfg.Gemini.AssistantName != "FitBot" {
		t.Fatalf("unexpected model defaults: %+v", cfg.Gemini)
	}
	if cfg.AIEnabled() {
		t.Fatal("AI should be disabled without an API key")
	}
	if !cfg.IsDevelopment() {
		t.Fatal("empty FRONTEND_URL should be development")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "legacy")
	t.Setenv("GEMINI_API_KEY", "primary")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("CHAT_RATE_WINDOW", "30s")
	t.Setenv("CONVERSATION_LOG_ENABLED", "yes")
	t.Setenv("FRONTEND_URL", "https://fit.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Gemini.APIKey != "primary" || !cfg.AIEnabled() {
		t.Errorf("GEMINI_API_KEY should win over API_KEY, got %q", cfg.Gemini.APIKey)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Chat.RateWindow != 30*time.Second {
		t.Errorf("RateWindow = %v", cfg.Chat.RateWindow)
	}
	if !cfg.ConversationLog.Enabled {
		t.Error("conversation log should be enabled")
	}
	if cfg.IsDevelopment() {
		t.Error("remote FRONTEND_URL should not be development")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
port: "7000"
db_path: ./data/fitcoach.db
session_ttl: 2h
gemini:
  api_key: from-file
  model: gemini-2.5-pro
  timeout: 45s
  temperature: 0.4
chat:
  rate_limit: 5
`)
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.DBPath != "./data/fitcoach.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.Gemini.Timeout != 45*time.Second {
		t.Errorf("durations not parsed: ttl=%v timeout=%v", cfg.SessionTTL, cfg.Gemini.Timeout)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("env should override file, got %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.Temperature == nil || *cfg.Gemini.Temperature != 0.4 {
		t.Errorf("Temperature = %v", cfg.Gemini.Temperature)
	}
	if cfg.Chat.RateLimit != 5 || cfg.Chat.RateWindow != time.Minute {
		t.Errorf("chat config = %+v", cfg.Chat)
	}
	if cfg.Gemini.AssistantName != "FitBot" {
		t.Errorf("unset file keys should keep defaults, got %q", cfg.Gemini.AssistantName)
	}
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	_, err := LoadFile(writeFile(t, "port: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Fatalf("expected parse error, got %v", err)
	}

	_, err = LoadFile(writeFile(t, "chat:\n  rate_limit: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "CHAT_RATE_LIMIT") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*Config){
		"PORT":                        func(c *Config) { c.Port = "" },
		"DB_PATH":                     func(c *Config) { c.DBPath = "" },
		"SESSION_TTL":                 func(c *Config) { c.SessionTTL = 0 },
		"GEMINI_TIMEOUT":              func(c *Config) { c.Gemini.Timeout = -time.Second },
		"CONVERSATION_LOG_QUEUE_SIZE": func(c *Config) { c.ConversationLog.QueueSize = 0 },
	}
	for want, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%s: got %v", want, err)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FC_BOOL", "off")
	t.Setenv("FC_INT", "x")
	t.Setenv("FC_DUR", "bogus")

	if getEnvBool("FC_BOOL", true) {
		t.Error("off should parse as false")
	}
	if getEnvInt("FC_INT", 7) != 7 {
		t.Error("invalid int should fall back")
	}
	if getEnvDuration("FC_DUR", time.Second) != time.Second {
		t.Error("invalid duration should fall back")
	}
}

func TestAgentSettings(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "k"
	cfg.ConversationLog.Enabled = true

	a := cfg.Agent()
	if a.APIKey != "k" || a.Model != cfg.Gemini.Model || a.Timeout != cfg.Gemini.Timeout {
		t.Fatalf("unexpected agent config: %+v", a)
	}
	l := cfg.ConversationLogging()
	if !l.Enabled || l.QueueSize != cfg.ConversationLog.QueueSize || l.Dir != cfg.ConversationLog.Dir {
		t.Fatalf("unexpected conversation log config: %+v", l)
	}
}
