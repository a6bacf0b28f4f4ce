package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gpwsched/internal/crontab"
)

func cronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Reconcile job declarations with the crontab",
	}
	cmd.AddCommand(cronInstallCmd(), cronUninstallCmd(), cronStatusCmd(), cronValidateCmd())
	return cmd
}

func cronInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Write all enabled jobs into the crontab's managed section",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			sync, err := newSynchronizer(cfg, st, logger)
			if err != nil {
				return err
			}

			ok, msg := sync.Install(cmd.Context())
			if !ok {
				return errors.New(msg)
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func cronUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the managed section from the crontab",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			sync, err := newSynchronizer(cfg, st, logger)
			if err != nil {
				return err
			}

			ok, msg := sync.Uninstall(cmd.Context())
			if !ok {
				return errors.New(msg)
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func cronStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installed lines and drift against declarations",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			sync, err := newSynchronizer(cfg, st, logger)
			if err != nil {
				return err
			}

			installed, err := sync.Installed(cmd.Context())
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				fmt.Println("No managed section installed.")
			} else {
				fmt.Printf("Installed (%d):\n", len(installed))
				for _, line := range installed {
					fmt.Println(" ", line)
				}
			}

			drift, err := sync.DetectDrift(cmd.Context())
			if err != nil {
				return err
			}
			if drift.Empty() {
				fmt.Println("Declarations and crontab are in sync.")
				return nil
			}
			for _, name := range drift.Stale {
				fmt.Printf("Stale: %s is enabled but not installed\n", name)
			}
			for _, name := range drift.Orphaned {
				fmt.Printf("Orphaned: %s is installed but not declared/enabled\n", name)
			}
			fmt.Println("Run `gpwsched cron install` to reconcile.")
			return nil
		},
	}
}

func cronValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <expression>",
		Short: "Validate a 5-field cron expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ok, msg := crontab.Validate(args[0])
			if !ok {
				return errors.New(msg)
			}
			fmt.Println(msg)
			return nil
		},
	}
}
