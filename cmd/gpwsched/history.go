package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [job_name]",
		Short: "Show the execution ledger, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			jobName := ""
			if len(args) == 1 {
				jobName = args[0]
			}

			executions, err := st.Executions(cmd.Context(), jobName, limit)
			if err != nil {
				return err
			}
			if len(executions) == 0 {
				fmt.Println("No executions recorded.")
				return nil
			}

			for _, e := range executions {
				duration := "-"
				if e.DurationSeconds != nil {
					duration = (time.Duration(*e.DurationSeconds) * time.Second).String()
				}
				fmt.Printf("%-5d %-24s %-10s %-20s %8s reports=%d docs=%d",
					e.ID, e.JobName, e.Status,
					e.StartedAt.Local().Format("2006-01-02 15:04:05"),
					duration, e.ReportsFound, e.DocumentsProcessed)
				if e.ErrorMessage != "" {
					fmt.Printf("  error=%q", e.ErrorMessage)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to show")
	return cmd
}
