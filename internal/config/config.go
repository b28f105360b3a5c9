// Package config loads service configuration from an optional YAML file
// and FORMSHIFT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Sheets     SheetsConfig     `mapstructure:"sheets"`
	Completion CompletionConfig `mapstructure:"completion"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	BaseURL         string `mapstructure:"base_url"`
	FormsSheet      string `mapstructure:"forms_sheet"`
	PromptSheet     string `mapstructure:"prompt_sheet"`
	HistorySheet    string `mapstructure:"history_sheet"`
	InterestSheet   string `mapstructure:"interest_sheet"`
}

type CompletionConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the FORMSHIFT prefix with
// underscores, e.g. FORMSHIFT_SHEETS_SPREADSHEET_ID.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7777)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Keys without a real default still need one registered so that
	// AutomaticEnv values survive Unmarshal.
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com")
	v.SetDefault("sheets.forms_sheet", "Sheet1")
	v.SetDefault("sheets.prompt_sheet", "prompt")
	v.SetDefault("sheets.history_sheet", "history")
	v.SetDefault("sheets.interest_sheet", "interest_registered")

	v.SetDefault("completion.provider", "openai")
	v.SetDefault("completion.base_url", "https://api.openai.com")
	v.SetDefault("completion.model", "gpt-3.5-turbo")
	v.SetDefault("completion.max_tokens", 500)
	v.SetDefault("completion.temperature", 0.7)
	v.SetDefault("completion.timeout", 60*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix("FORMSHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// OPENAI_API_KEY is honored without the prefix since that is what
	// the provider's own tooling expects.
	_ = v.BindEnv("completion.api_key", "FORMSHIFT_COMPLETION_API_KEY", "OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}
	if c.Completion.Provider == "openai" && c.Completion.APIKey == "" {
		return fmt.Errorf("completion.api_key is required for the openai provider")
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
