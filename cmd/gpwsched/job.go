package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gpwsched/internal/job"
	"gpwsched/internal/schedule"
)

func jobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage job declarations",
	}
	cmd.AddCommand(jobSaveCmd(), jobListCmd(), jobShowCmd(),
		jobEnableCmd(true), jobEnableCmd(false), jobDeleteCmd())
	return cmd
}

func jobSaveCmd() *cobra.Command {
	var (
		company    string
		model      string
		exprText   string
		every      string
		at         string
		weekday    string
		dayOfMonth int
		dateFrom   string
		dateTo     string
		limit      int
		types      []string
		categories []string
		desc       string
		disabled   bool
	)

	cmd := &cobra.Command{
		Use:   "save <job_name>",
		Short: "Create or update a job declaration",
		Long: `Create or update a job declaration. Re-saving an existing job overwrites
its declarative fields but preserves its run statistics.

The schedule is given either as a raw cron expression (--schedule) or as a
human description (--every daily|weekly|monthly with --at, --weekday, --day).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := buildSchedule(exprText, every, at, weekday, dayOfMonth)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			name, err := st.Save(cmd.Context(), job.Config{
				Name:             args[0],
				Company:          company,
				DateFrom:         dateFrom,
				DateTo:           dateTo,
				Model:            model,
				Schedule:         expr,
				Enabled:          !disabled,
				ReportLimit:      limit,
				ReportTypes:      types,
				ReportCategories: categories,
				Description:      desc,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Saved job %q (%s)\n", name, expr.HumanText())
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company ticker or name to monitor (required)")
	cmd.Flags().StringVar(&model, "model", "", "AI model used for summarization (required)")
	cmd.Flags().StringVar(&exprText, "schedule", "", "Raw 5-field cron expression, e.g. \"0 9 * * 1\"")
	cmd.Flags().StringVar(&every, "every", "", "Recurrence: daily, weekly or monthly")
	cmd.Flags().StringVar(&at, "at", "09:00", "Time of day for --every, HH:MM")
	cmd.Flags().StringVar(&weekday, "weekday", "monday", "Weekday for --every weekly")
	cmd.Flags().IntVar(&dayOfMonth, "day", 1, "Day of month for --every monthly")
	cmd.Flags().StringVar(&dateFrom, "from", "", "Start date, DD-MM-YYYY")
	cmd.Flags().StringVar(&dateTo, "to", "", "End date, DD-MM-YYYY")
	cmd.Flags().IntVar(&limit, "limit", job.DefaultReportLimit, "Maximum reports per run")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Report types to include")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Report categories to include")
	cmd.Flags().StringVar(&desc, "description", "", "Free-form job description")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Save the job disabled")

	return cmd
}

// buildSchedule resolves the two mutually exclusive scheduling flag forms.
func buildSchedule(exprText, every, at, weekday string, dayOfMonth int) (schedule.Expression, error) {
	switch {
	case exprText != "" && every != "":
		return schedule.Expression{}, fmt.Errorf("--schedule and --every are mutually exclusive")
	case exprText != "":
		return schedule.Parse(exprText)
	case every != "":
		hour, minute, err := parseClock(at)
		if err != nil {
			return schedule.Expression{}, err
		}
		wd, err := parseWeekday(weekday)
		if err != nil {
			return schedule.Expression{}, err
		}
		return schedule.FromHuman(schedule.Frequency(every), hour, minute, wd, dayOfMonth)
	default:
		return schedule.Expression{}, fmt.Errorf("one of --schedule or --every is required")
	}
}

func parseClock(at string) (hour, minute int, err error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid --at %q: expected HH:MM", at)
	}
	hour, herr := strconv.Atoi(parts[0])
	minute, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil {
		return 0, 0, fmt.Errorf("invalid --at %q: expected HH:MM", at)
	}
	return hour, minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return wd, nil
}

func jobListCmd() *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List job declarations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			configs, err := st.List(cmd.Context(), enabledOnly)
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				fmt.Println("No jobs declared.")
				return nil
			}

			for _, c := range configs {
				state := "enabled"
				if !c.Enabled {
					state = "disabled"
				}
				fmt.Printf("%-10s %-24s %-12s %-28s runs=%d\n",
					state, c.Name, c.Company, c.Schedule.HumanText(), c.RunCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Show only enabled jobs")
	return cmd
}

func jobShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <job_name>",
		Short: "Show one job declaration in full",
		Args:  cobra.ExactArgs(1),
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

			c, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Job:         %s\n", c.Name)
			fmt.Printf("Company:     %s\n", c.Company)
			fmt.Printf("Model:       %s\n", c.Model)
			fmt.Printf("Schedule:    %s (%s)\n", c.Schedule, c.Schedule.HumanText())
			fmt.Printf("Enabled:     %t\n", c.Enabled)
			fmt.Printf("Limit:       %d\n", c.ReportLimit)
			if len(c.ReportTypes) > 0 {
				fmt.Printf("Types:       %s\n", strings.Join(c.ReportTypes, ", "))
			}
			if len(c.ReportCategories) > 0 {
				fmt.Printf("Categories:  %s\n", strings.Join(c.ReportCategories, ", "))
			}
			if c.DateFrom != "" || c.DateTo != "" {
				fmt.Printf("Date range:  %s - %s\n", c.DateFrom, c.DateTo)
			}
			if c.Description != "" {
				fmt.Printf("Description: %s\n", c.Description)
			}
			fmt.Printf("Run count:   %d\n", c.RunCount)
			if c.LastRun != nil {
				fmt.Printf("Last run:    %s\n", c.LastRun.Local().Format(time.RFC1123))
			}
			if c.NextRun != nil {
				fmt.Printf("Next run:    %s (advisory)\n", c.NextRun.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func jobEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <job_name>", "Enable a job declaration"
	if !enable {
		use, short = "disable <job_name>", "Disable a job declaration"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
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

			if err := st.SetEnabled(cmd.Context(), args[0], enable); err != nil {
				return err
			}
			if enable {
				fmt.Printf("Enabled job %q. Run `gpwsched cron install` to schedule it.\n", args[0])
			} else {
				fmt.Printf("Disabled job %q. Run `gpwsched cron install` to unschedule it.\n", args[0])
			}
			return nil
		},
	}
}

func jobDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job_name>",
		Short: "Delete a job declaration and its scheduler entry",
		Args:  cobra.ExactArgs(1),
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

			deleted, err := st.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Printf("No job named %q.\n", args[0])
				return nil
			}

			// Deleting a declaration must also drop its crontab line.
			sync, err := newSynchronizer(cfg, st, logger)
			if err != nil {
				return err
			}
			if remaining, err := st.List(cmd.Context(), true); err == nil && len(remaining) == 0 {
				if ok, msg := sync.Uninstall(cmd.Context()); !ok {
					fmt.Println("Warning:", msg)
				}
			} else if ok, msg := sync.Install(cmd.Context()); !ok {
				fmt.Println("Warning:", msg)
			}

			fmt.Printf("Deleted job %q.\n", args[0])
			return nil
		},
	}
}
