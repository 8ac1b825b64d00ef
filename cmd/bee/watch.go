package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/notify"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

// bee watch
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Send reminder notifications as they come due",
	Long: `Send reminder notifications as they come due.

Checks the task list every --interval and notifies each open task whose
reminder time has passed, once. Tasks added or edited by other bee
commands are picked up on the next check.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchInterval time.Duration
	watchOnce     bool
	watchNotifier string
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between checks (default from config, 15s)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Check once and exit")
	watchCmd.Flags().StringVar(&watchNotifier, "notifier", "", "Notifier to use: terminal, desktop or both (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := newLogger(cmd, "remind: ")

	name := a.cfg.NotifierName()
	if watchNotifier != "" {
		name = watchNotifier
	}
	notifier, desktop, err := buildNotifier(cmd, name, a.kv)
	if err != nil {
		return err
	}
	if desktop != nil {
		switch desktop.Permission() {
		case remind.PermissionUnsupported:
			logger.Printf("desktop notifications are not supported here, using the terminal")
			notifier = notify.NewTerminal(cmd.OutOrStdout())
		case remind.PermissionDefault, remind.PermissionDenied:
			logger.Printf("desktop notifications are not enabled; run `bee notify enable`")
		}
	}

	interval := a.cfg.ReminderInterval()
	if watchInterval > 0 {
		interval = watchInterval
	}

	scheduler := remind.New(remind.Options{
		Tasks:    a.store,
		Notifier: notifier,
		Fired:    a.fired,
		Interval: interval,
		Reload:   true,
		Logger:   logger,
	})

	if watchOnce {
		sent := scheduler.Tick(ctx)
		if sent > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "sent %d reminder(s)\n", sent)
		}
		return nil
	}

	logger.Printf("watching for reminders every %s", scheduler.Interval())
	return scheduler.Run(ctx)
}
