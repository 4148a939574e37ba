// Package config provides application configuration.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file named by FITCOACH_CONFIG, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/fitcoach/internal/agent"
)

// ConfigFileEnv names the environment variable holding the YAML file path.
const ConfigFileEnv = "FITCOACH_CONFIG"

// Config holds all application configuration.
type Config struct {
	Port               string                `yaml:"port"`
	FrontendURL        string                `yaml:"frontend_url"`
	DBPath             string                `yaml:"db_path"`
	SessionTTL         time.Duration         `yaml:"session_ttl"`
	SweepInterval      time.Duration         `yaml:"sweep_interval"`
	MaxRequestBodySize int64                 `yaml:"max_request_body_size"`
	Gemini             GeminiConfig          `yaml:"gemini"`
	Chat               ChatConfig            `yaml:"chat"`
	ConversationLog    ConversationLogConfig `yaml:"conversation_log"`
}

// GeminiConfig configures the model provider. An empty APIKey disables
// plan generation and chat.
type GeminiConfig struct {
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	AssistantName string        `yaml:"assistant_name"`
	// Temperature is left to the model default when nil.
	Temperature *float32 `yaml:"temperature"`
}

// ChatConfig throttles chat messages per device.
type ChatConfig struct {
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	GlobalEnabled bool   `yaml:"global_enabled"`
	GlobalPath    string `yaml:"global_path"`
	QueueSize     int    `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8080",
		DBPath:             ":memory:",
		SessionTTL:         60 * time.Minute,
		SweepInterval:      5 * time.Minute,
		MaxRequestBodySize: 64 * 1024,
		Gemini: GeminiConfig{
			Model:         "gemini-2.5-flash",
			Timeout:       60 * time.Second,
			AssistantName: "FitBot",
		},
		Chat: ChatConfig{
			RateLimit:  20,
			RateWindow: time.Minute,
		},
		ConversationLog: ConversationLogConfig{
			Enabled:    false,
			Dir:        "./data/logs/conversations",
			GlobalPath: "./data/logs/conversations/all.ndjson",
			QueueSize:  1000,
		},
	}
}

// Load reads the file named by FITCOACH_CONFIG, if any, then applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.SweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", c.SweepInterval)
	c.MaxRequestBodySize = int64(getEnvInt("MAX_REQUEST_BODY_SIZE", int(c.MaxRequestBodySize)))

	c.Gemini.APIKey = getEnv("API_KEY", c.Gemini.APIKey)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.BaseURL = getEnv("GEMINI_BASE_URL", c.Gemini.BaseURL)
	c.Gemini.Timeout = getEnvDuration("GEMINI_TIMEOUT", c.Gemini.Timeout)
	c.Gemini.AssistantName = getEnv("ASSISTANT_NAME", c.Gemini.AssistantName)

	c.Chat.RateLimit = getEnvInt("CHAT_RATE_LIMIT", c.Chat.RateLimit)
	c.Chat.RateWindow = getEnvDuration("CHAT_RATE_WINDOW", c.Chat.RateWindow)

	c.ConversationLog.Enabled = getEnvBool("CONVERSATION_LOG_ENABLED", c.ConversationLog.Enabled)
	c.ConversationLog.Dir = getEnv("CONVERSATION_LOG_DIR", c.ConversationLog.Dir)
	c.ConversationLog.GlobalEnabled = getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", c.ConversationLog.GlobalEnabled)
	c.ConversationLog.GlobalPath = getEnv("CONVERSATION_LOG_GLOBAL_PATH", c.ConversationLog.GlobalPath)
	c.ConversationLog.QueueSize = getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", c.ConversationLog.QueueSize)
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be > 0")
	}
	if c.MaxRequestBodySize <= 0 {
		return errors.New("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.Gemini.Model == "" {
		return errors.New("GEMINI_MODEL cannot be empty")
	}
	if c.Gemini.Timeout <= 0 {
		return errors.New("GEMINI_TIMEOUT must be > 0")
	}
	if c.Chat.RateLimit <= 0 {
		return errors.New("CHAT_RATE_LIMIT must be > 0")
	}
	if c.Chat.RateWindow <= 0 {
		return errors.New("CHAT_RATE_WINDOW must be > 0")
	}
	if c.ConversationLog.Dir == "" {
		return errors.New("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.GlobalPath == "" {
		return errors.New("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return errors.New("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// AIEnabled reports whether a model API key is configured.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// Agent returns the model provider settings.
func (c *Config) Agent() agent.Config {
	return agent.Config{
		APIKey:        c.Gemini.APIKey,
		Model:         c.Gemini.Model,
		BaseURL:       c.Gemini.BaseURL,
		Timeout:       c.Gemini.Timeout,
		AssistantName: c.Gemini.AssistantName,
		Temperature:   c.Gemini.Temperature,
	}
}

// ConversationLogging returns the conversation log settings.
func (c *Config) ConversationLogging() agent.ConversationLogConfig {
	return agent.ConversationLogConfig{
		Enabled:       c.ConversationLog.Enabled,
		Dir:           c.ConversationLog.Dir,
		GlobalEnabled: c.ConversationLog.GlobalEnabled,
		GlobalPath:    c.ConversationLog.GlobalPath,
		QueueSize:     c.ConversationLog.QueueSize,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
