package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	DBPath       string    `toml:"db_path"`
	Addr         string    `toml:"addr"`
	TaxonomyPath string    `toml:"taxonomy_path"`
	Companion    Companion `toml:"companion"`
	Sentiment    Sentiment `toml:"sentiment"`
}

// Companion configures the external generative companion service
type Companion struct {
	APIKey           string `toml:"api_key"`
	Model            string `toml:"model"`
	MaxPromptTokens  int    `toml:"max_prompt_tokens"`
	MaxSummaryTokens int    `toml:"max_summary_tokens"`
	MaxReplyTokens   int    `toml:"max_reply_tokens"`
}

// Sentiment configures the hosted polarity classification service
type Sentiment struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Default returns the built-in configuration with environment overrides applied
func Default() Config {
	home, _ := os.UserHomeDir()

	c := Config{
		DBPath: filepath.Join(home, ".journal", "journal.db"),
		Addr:   ":8080",
		Companion: Companion{
			Model:            "claude-sonnet-4-20250514",
			MaxPromptTokens:  100,
			MaxSummaryTokens: 300,
			MaxReplyTokens:   250,
		},
		Sentiment: Sentiment{
			URL: "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english",
		},
	}
	c.applyEnv()
	return c
}

// Load reads a TOML config file, falling back to Default when path is empty.
// Environment variables override file values.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JOURNAL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Companion.APIKey = v
	}
	if v := os.Getenv("SENTIMENT_URL"); v != "" {
		c.Sentiment.URL = v
	}
	if v := os.Getenv("SENTIMENT_API_KEY"); v != "" {
		c.Sentiment.APIKey = v
	}
}
