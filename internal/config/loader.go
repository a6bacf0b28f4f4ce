package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern captures the variable name and an optional :-fallback.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the YAML file at path into a Config with defaults applied.
// ${VAR} and ${VAR:-fallback} references are expanded from the environment
// before decoding, so machine-specific values like database paths never
// need to live in the file itself.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.Defaults()
	return &cfg, nil
}

// expandEnv substitutes every environment reference in raw. A reference
// with no environment value and no fallback is left in place and collected;
// all such misses come back as one joined error so the operator can fix the
// whole file in one pass.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []error

	expanded := envPattern.ReplaceAllFunc(raw, func(token []byte) []byte {
		groups := envPattern.FindSubmatch(token)
		name := string(groups[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if fallback := groups[2]; fallback != nil {
			return fallback
		}

		missing = append(missing, fmt.Errorf("unresolved variable: %s", name))
		return token
	})

	return expanded, errors.Join(missing...)
}
