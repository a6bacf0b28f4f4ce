package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpwsched/internal/collect"
	"gpwsched/internal/runner"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job_name>",
		Short: "Execute one job now and record the attempt",
		Long: `Execute one job now and record the attempt in the execution ledger.
This is the command the installed crontab lines invoke; the exit code
reflects success (0) or failure (non-zero) for the scheduler's own
alerting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if len(args) == 0 {
				fmt.Println("Usage: gpwsched run <job_name>")
				configs, err := st.List(cmd.Context(), false)
				if err != nil {
					return err
				}
				if len(configs) > 0 {
					fmt.Println("\nAvailable jobs:")
					for _, c := range configs {
						mark := "x"
						if c.Enabled {
							mark = "+"
						}
						fmt.Printf("  [%s] %s - %s\n", mark, c.Name, c.Description)
					}
				}
				return fmt.Errorf("missing job name")
			}

			timeout, err := cfg.ScraperTimeout()
			if err != nil {
				return err
			}
			collector, err := collect.NewExecCollector(cfg.Scraper.Command, timeout, logger)
			if err != nil {
				return fmt.Errorf("scraper.command is not configured: %w", err)
			}

			r := runner.New(st, st, collector, cfg.ResultsDir, logger)
			if !r.Run(cmd.Context(), args[0]) {
				return fmt.Errorf("job %s failed", args[0])
			}
			return nil
		},
	}
}
