package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codeport/internal/domain"
)

// Config holds all configuration for codeport.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds conversion configuration.
type ConvertConfig struct {
	SourceLanguage string   `yaml:"source_language"`
	DestLanguage   string   `yaml:"dest_language"`
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	Concurrency    int      `yaml:"concurrency"`
	Libraries      []string `yaml:"libraries"` // Destination libraries suggested to the model
}

// LLMConfig holds model provider configuration.
type LLMConfig struct {
	Provider       string `yaml:"provider"` // "openai", "deepseek", "ollama", "gemini", "mock"
	Model          string `yaml:"model"`
	Name           string `yaml:"name"`        // Transcript file prefix
	APIKeyEnv      string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL        string `yaml:"base_url"`
	MaxRetries     int    `yaml:"max_retries"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"` // Relative to the root directory; ":memory:" keeps responses for one run
	MemoryEntries int    `yaml:"memory_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	TranscriptDir string `yaml:"transcript_dir"` // Empty disables transcripts
}

var providers = map[string]bool{
	"openai":   true,
	"deepseek": true,
	"ollama":   true,
	"gemini":   true,
	"mock":     true,
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			SourceLanguage: string(domain.LanguageRust),
			DestLanguage:   string(domain.LanguageGo),
			Includes:       []string{},
			Excludes:       []string{"**/mod.rs", "**/vendor/**", "**/node_modules/**", "**/.git/**", "**/target/**", "**/__pycache__/**"},
			Concurrency:    8,
			Libraries:      []string{},
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Name:           "codeport",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxRetries:     3,
			TimeoutSeconds: 300,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Path:          filepath.Join(".codeport", "cache.db"),
			MemoryEntries: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for codeport.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "codeport.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".codeport", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for values the converter cannot run with.
func (c *Config) Validate() error {
	src, err := domain.ParseLanguage(c.Convert.SourceLanguage)
	if err != nil {
		return fmt.Errorf("convert.source_language: %w", err)
	}
	dest, err := domain.ParseLanguage(c.Convert.DestLanguage)
	if err != nil {
		return fmt.Errorf("convert.dest_language: %w", err)
	}
	if src == dest {
		return fmt.Errorf("source and destination language are both %s", src)
	}
	if c.Convert.Concurrency < 1 {
		return fmt.Errorf("convert.concurrency must be positive, got %d", c.Convert.Concurrency)
	}
	if !providers[c.LLM.Provider] {
		return fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" && c.LLM.Provider != "mock" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	return nil
}
