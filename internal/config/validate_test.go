package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	if err := Validate(validConfig()); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		LogLevel: "loud",
		Scraper:  ScraperConfig{Timeout: "soon", Command: []string{"python3", ""}},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{"database.path", "log_level", "scraper.timeout", "scraper.command[1]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got:\n%v", want, err)
		}
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Scraper.Timeout = "-5m"
	if err := Validate(cfg); err == nil {
		t.Error("negative timeout should be rejected")
	}
}

func TestScraperTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	d, err := cfg.ScraperTimeout()
	if err != nil {
		t.Fatalf("ScraperTimeout() error = %v", err)
	}
	if d != 10*time.Minute {
		t.Errorf("default timeout = %s, want 10m", d)
	}
}
