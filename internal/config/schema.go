// Package config loads and validates the gpwsched application
// configuration from YAML, with environment-variable expansion.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the application configuration.
type Config struct {
	Database   DatabaseConfig `yaml:"database"`
	Scraper    ScraperConfig  `yaml:"scraper"`
	Cron       CronConfig     `yaml:"cron"`
	ResultsDir string         `yaml:"results_dir"`
	LogLevel   string         `yaml:"log_level"`
}

// DatabaseConfig locates the SQLite database holding job declarations and
// the execution ledger.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScraperConfig describes the external scraping/summarization pipeline.
type ScraperConfig struct {
	// Command is the pipeline program and its fixed arguments.
	Command []string `yaml:"command"`

	// Timeout is the hard wall-clock budget per run (e.g. "10m").
	Timeout string `yaml:"timeout"`
}

// CronConfig controls the generated crontab lines.
type CronConfig struct {
	// RunnerCommand is placed before the job name on every generated line.
	// Empty means "<this executable> run".
	RunnerCommand string `yaml:"runner_command"`

	// LogDir receives one append-only log file per job.
	LogDir string `yaml:"log_dir"`
}

// Defaults fills unset fields with their default values.
func (c *Config) Defaults() {
	if c.Database.Path == "" {
		c.Database.Path = "gpwsched.db"
	}
	if c.Scraper.Timeout == "" {
		c.Scraper.Timeout = "10m"
	}
	if c.Cron.LogDir == "" {
		c.Cron.LogDir = "logs"
	}
	if c.ResultsDir == "" {
		c.ResultsDir = "scheduled_results"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ScraperTimeout parses the configured timeout. Call after Validate.
func (c *Config) ScraperTimeout() (time.Duration, error) {
	return parseDuration("scraper.timeout", c.Scraper.Timeout)
}

// parseDuration parses a duration field, rejecting negative values.
func parseDuration(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s: duration must be >= 0", path)
	}
	return d, nil
}
