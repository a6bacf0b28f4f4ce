// Package main is the entry point for the gpwsched CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gpwsched/internal/config"
	"gpwsched/internal/crontab"
	"gpwsched/internal/store"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gpwsched",
		Short:         "Schedule, install and run recurring report-collection jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(versionCmd(), jobCmd(), cronCmd(), runCmd(), historyCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("gpwsched %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig resolves and loads the application configuration. When no file
// exists anywhere on the search path, built-in defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = resolveConfigPath()
	}

	if path == "" {
		cfg := &config.Config{}
		cfg.Defaults()
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/gpwsched/gpwsched.yaml → ./gpwsched.yaml
func resolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "gpwsched", "gpwsched.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "gpwsched", "gpwsched.yaml"))
	}

	candidates = append(candidates, "gpwsched.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Database.Path)
}

// newSynchronizer builds the crontab synchronizer against the real system
// crontab. The generated lines invoke this very binary's run subcommand
// unless the configuration overrides the runner command.
func newSynchronizer(cfg *config.Config, st *store.Store, logger *slog.Logger) (*crontab.Synchronizer, error) {
	runnerCmd := cfg.Cron.RunnerCommand
	if runnerCmd == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolving own executable path: %w", err)
		}
		runnerCmd = self + " run"
	}
	return crontab.NewSynchronizer(st, crontab.System{}, runnerCmd, cfg.Cron.LogDir, logger), nil
}
