package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pomo/internal/bootstrap"
	"pomo/internal/modules/pomodoro/dto"
	"pomo/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "pomo",
		Short:         "Pomodoro interval timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory for history, settings and journal (default: user config dir)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: debug|info|warn|error")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newTodayCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func loadApp(flags *rootFlags, tui bool) (*bootstrap.App, error) {
	dataDir := flags.dataDir
	if dataDir == "" {
		var err error
		if dataDir, err = config.DefaultDataDir(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.Options{LogLevel: flags.logLevel, LogToFile: tui})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(flags, true)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var cycles int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer headless, printing notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cycles < 0 {
				return fmt.Errorf("--cycles must not be negative")
			}
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			return bootstrap.RunHeadless(ctx, app, cycles, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&cycles, "cycles", 0, "stop after this many work sessions (0 runs until interrupted)")
	return cmd
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			sessions, err := app.TimerCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range sessions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", s.CompletedAt.Local().Format("2006-01-02 15:04"), s.Mode, s.Duration, s.ID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of sessions to show")
	return cmd
}

func newTodayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's focus time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TimerCLI.Today(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "date: %s\nfocused: %s\nwork sessions: %d\n", out.Date.Format("2006-01-02"), out.Focused, out.WorkSessions)
			return nil
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write today's sessions to the markdown journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TimerCLI.Export(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", out.Sessions, out.Path)
			return nil
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Timer settings"}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active timer settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			status, err := app.TimerCLI.Status(context.Background())
			if err != nil {
				return err
			}
			printSettings(cmd, app.Config.SettingsPath, status)
			return nil
		},
	})

	var work, shortBreak, long, every int
	set := &cobra.Command{
		Use:   "set",
		Short: "Update timer settings; omitted flags keep their value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if work == 0 && shortBreak == 0 && long == 0 && every == 0 {
				return fmt.Errorf("at least one of --work, --break, --long, --every is required")
			}
			app, err := loadApp(flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			status, err := app.TimerCLI.Configure(context.Background(), work, shortBreak, long, every)
			if err != nil {
				return err
			}
			printSettings(cmd, app.Config.SettingsPath, status)
			return nil
		},
	}
	set.Flags().IntVar(&work, "work", 0, "work session minutes")
	set.Flags().IntVar(&shortBreak, "break", 0, "short break minutes")
	set.Flags().IntVar(&long, "long", 0, "long break minutes")
	set.Flags().IntVar(&every, "every", 0, "work sessions before a long break")
	configCmd.AddCommand(set)
	return configCmd
}

func printSettings(cmd *cobra.Command, path string, status dto.StatusOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "file: %s\nwork: %s\nbreak: %s\nlong break: %s\nlong break every: %d\n",
		path, status.WorkDuration, status.BreakDuration, status.LongBreakDuration, status.SessionsBeforeLongBreak)
}
