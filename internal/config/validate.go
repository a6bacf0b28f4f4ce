package config

import (
	"errors"
	"fmt"
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks the structural validity of a Config. All violations are
// collected and returned as one joined error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Path == "" {
		errs = append(errs, errors.New("config: database.path is required"))
	}

	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		errs = append(errs, fmt.Errorf("config: unknown log_level %q (supported: debug, info, warn, error)", cfg.LogLevel))
	}

	if _, err := cfg.ScraperTimeout(); err != nil {
		errs = append(errs, err)
	}

	for i, arg := range cfg.Scraper.Command {
		if arg == "" {
			errs = append(errs, fmt.Errorf("config: scraper.command[%d] is empty", i))
		}
	}

	return errors.Join(errs...)
}
