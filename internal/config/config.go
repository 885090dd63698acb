package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/repurposer/internal/platform"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	LLM      LLM      `yaml:"llm"`
	Defaults Defaults `yaml:"defaults"`
	History  History  `yaml:"history"`
	Usage    Usage    `yaml:"usage"`
	Fetch    Fetch    `yaml:"fetch"`
	Cache    Cache    `yaml:"cache"`
	Feeds    []Feed   `yaml:"feeds"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type LLM struct {
	Provider  string `yaml:"provider" env:"REPURPOSER_LLM_PROVIDER"`
	Model     string `yaml:"model" env:"REPURPOSER_LLM_MODEL"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url" env:"REPURPOSER_LLM_BASE_URL"`
	OllamaURL string `yaml:"ollama_url" env:"REPURPOSER_OLLAMA_URL"`
	MaxTokens int    `yaml:"max_tokens"`
}

type Defaults struct {
	Tone          string   `yaml:"tone"`
	Length        string   `yaml:"length"`
	Formats       []string `yaml:"formats"`
	TweetCount    int      `yaml:"tweet_count"`
	HashtagCount  int      `yaml:"hashtag_count"`
	IncludeEmojis bool     `yaml:"include_emojis"`
}

type History struct {
	PageSize int `yaml:"page_size"`
}

type Usage struct {
	MonthlyLimit int `yaml:"monthly_limit" env:"REPURPOSER_MONTHLY_LIMIT"`
}

type Fetch struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type Cache struct {
	RedisAddr     string `yaml:"redis_addr" env:"REPURPOSER_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REPURPOSER_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
	TTLMinutes    int    `yaml:"ttl_minutes"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Output struct {
	DataDir string `yaml:"data_dir" env:"REPURPOSER_DATA_DIR"`
}

type Server struct {
	Port int `yaml:"port" env:"REPURPOSER_PORT"`
}

type Logging struct {
	Level string `yaml:"level" env:"REPURPOSER_LOG_LEVEL"`
}

// ConfigDir returns the XDG config directory for repurposer.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "repurposer")
}

// DataDir returns the XDG data directory for repurposer.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "repurposer")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/repurposer/config.yaml > ./config.yaml
// It returns "" without error when no file exists, in which case the
// built-in defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads a config YAML file, or only the defaults when path is empty,
// then applies REPURPOSER_* environment overrides.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		LLM: LLM{
			Provider:  "claude",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			OllamaURL: "http://localhost:11434",
			MaxTokens: 4096,
		},
		Defaults: Defaults{
			Tone:          string(platform.Professional),
			Length:        string(platform.Medium),
			Formats:       []string{string(platform.TwitterThread), string(platform.LinkedIn)},
			TweetCount:    5,
			HashtagCount:  3,
			IncludeEmojis: true,
		},
		History: History{PageSize: 20},
		Usage:   Usage{MonthlyLimit: 50},
		Fetch:   Fetch{TimeoutSeconds: 30, UserAgent: "Repurposer/1.0"},
		Cache:   Cache{TTLMinutes: 60},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "info"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the generation defaults against the known presets.
func (c *Config) Validate() error {
	if _, err := platform.ParseTone(c.Defaults.Tone); err != nil {
		return fmt.Errorf("defaults.tone: %w", err)
	}
	if _, err := platform.ParseLength(c.Defaults.Length); err != nil {
		return fmt.Errorf("defaults.length: %w", err)
	}
	for _, f := range c.Defaults.Formats {
		if _, err := platform.ParseFormat(f); err != nil {
			return fmt.Errorf("defaults.formats: %w", err)
		}
	}
	if err := c.PlatformDefaults().Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if c.History.PageSize <= 0 || c.History.PageSize > 100 {
		return fmt.Errorf("history.page_size must be between 1 and 100, got %d", c.History.PageSize)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "repurposer.db")
}

// ExportDir returns the directory export documents are written to.
func (c *Config) ExportDir() string {
	return filepath.Join(c.GetDataDir(), "exports")
}

// EnvAPIKey returns the provider API key from the configured environment
// variable, or "".
func (c *Config) EnvAPIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

// PlatformDefaults returns the generation hints applied when a request
// leaves them unset.
func (c *Config) PlatformDefaults() platform.Config {
	return platform.Config{
		TweetCount:    platform.Int(c.Defaults.TweetCount),
		HashtagCount:  platform.Int(c.Defaults.HashtagCount),
		IncludeEmojis: platform.Bool(c.Defaults.IncludeEmojis),
	}
}

// FetchTimeout returns the URL fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheTTL returns the fetch cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
