package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Question table sources
const (
	SourceXLSX   = "xlsx"
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config holds all the configuration for the application
type Config struct {
	BotToken     string `env:"BOT_TOKEN"`
	Debug        bool   `env:"DEBUG"`
	DatabasePath string `env:"DB_PATH" envDefault:"./data/mathmantra.db"`

	QuestionSource string `env:"QUESTION_SOURCE" envDefault:"xlsx"`
	AssetsDir      string `env:"ASSETS_DIR" envDefault:"./assets"`
	AssetsFormat   string `env:"ASSETS_FORMAT" envDefault:"xlsx"`
	ImportAssets   bool   `env:"IMPORT_ASSETS"`

	DefaultLanguage        string   `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	DefaultDifficulty      string   `env:"DEFAULT_DIFFICULTY" envDefault:"1"`
	Difficulties           []string `env:"DIFFICULTIES" envDefault:"1,2,3,4,5"`
	PreloadAllDifficulties bool     `env:"PRELOAD_ALL_DIFFICULTIES" envDefault:"true"`
	PreloadWorkers         int      `env:"PRELOAD_WORKERS" envDefault:"4"`
	RerollOnReplay         bool     `env:"REROLL_ON_REPLAY"`

	LabelModes      []string       `env:"LABEL_MODES" envDefault:"direction,drawing"`
	MaxAttempts     int            `env:"MAX_ATTEMPTS" envDefault:"3"`
	ModeMaxAttempts map[string]int `env:"MODE_MAX_ATTEMPTS"`
	WrongCeilings   map[string]int `env:"MODE_WRONG_CEILINGS" envDefault:"quickplay:7,day:3,shake:3"`

	DeepseekAPIKey string        `env:"DEEPSEEK_API_KEY"`
	DeepseekURL    string        `env:"DEEPSEEK_API_URL" envDefault:"https://api.deepseek.com/v1/chat/completions"`
	ExplainTimeout time.Duration `env:"EXPLAIN_TIMEOUT" envDefault:"60s"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN environment variable is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values that cannot be expressed as env defaults
func (c *Config) Validate() error {
	c.QuestionSource = strings.ToLower(strings.TrimSpace(c.QuestionSource))
	c.AssetsFormat = strings.ToLower(strings.TrimSpace(c.AssetsFormat))

	switch c.QuestionSource {
	case SourceXLSX, SourceCSV, SourceSQLite:
	default:
		return fmt.Errorf("QUESTION_SOURCE must be one of xlsx, csv, sqlite, got %q", c.QuestionSource)
	}

	if c.ImportAssets && c.AssetsFormat != SourceXLSX && c.AssetsFormat != SourceCSV {
		return fmt.Errorf("ASSETS_FORMAT must be xlsx or csv when importing, got %q", c.AssetsFormat)
	}

	if c.MaxAttempts <= 0 {
		return errors.New("MAX_ATTEMPTS must be positive")
	}

	for mode, n := range c.ModeMaxAttempts {
		if n <= 0 {
			return fmt.Errorf("MODE_MAX_ATTEMPTS for %s must be positive", mode)
		}
	}

	if c.PreloadWorkers <= 0 {
		c.PreloadWorkers = 1
	}

	if len(c.Difficulties) == 0 {
		return errors.New("DIFFICULTIES must list at least one tier")
	}

	return nil
}
