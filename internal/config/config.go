package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/banklift-dev/banklift/internal/accounts"
	"github.com/banklift-dev/banklift/internal/model"
)

// Config represents one import run's settings, usually loaded from
// banklift.yaml. It is passed by value into the pipeline; nothing
// reads it as ambient state, so several imports with different
// configs can run in one process.
type Config struct {
	// Account is the account the bank export belongs to. Required.
	Account string `yaml:"account"`
	// UnknownAccount collects transactions that could not be
	// classified from history.
	UnknownAccount string `yaml:"unknown_account"`
	// Journal is the path of an existing beancount journal to learn
	// counter accounts from. Empty disables inference entirely.
	Journal string `yaml:"journal,omitempty"`
	// Currency applies when a statement row carries no currency.
	Currency string `yaml:"currency"`
	// Flag marks generated entries; '!' keeps them visible as
	// pending review.
	Flag string `yaml:"flag"`
	// Format names the statement parser.
	Format string `yaml:"format"`
	// CaseInsensitive folds payees during matching.
	CaseInsensitive bool `yaml:"case_insensitive"`
	// LogDir, when set, receives a run-log row per conversion.
	LogDir string `yaml:"log_dir,omitempty"`
}

// Default returns a Config with defaults for everything but Account.
func Default() Config {
	return Config{
		UnknownAccount: model.UnknownAccount,
		Currency:       "EUR",
		Flag:           "!",
		Format:         "volksbank",
	}
}

// Load reads a banklift.yaml file. Absent fields keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the fields a run cannot proceed without.
func (c Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if !accounts.Valid(c.Account) {
		return fmt.Errorf("invalid account name %q", c.Account)
	}
	if !accounts.Valid(c.UnknownAccount) {
		return fmt.Errorf("invalid unknown_account name %q", c.UnknownAccount)
	}
	if c.Flag != "!" && c.Flag != "*" {
		return fmt.Errorf("flag must be %q or %q, got %q", "!", "*", c.Flag)
	}
	if c.Format == "" {
		return fmt.Errorf("format is required")
	}
	return nil
}
