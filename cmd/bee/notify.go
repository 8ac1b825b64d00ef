package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/config"
	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage reminder notification permission",
}

// bee notify status
var notifyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether reminder notifications are allowed",
	Args:  cobra.NoArgs,
	RunE:  runNotifyStatus,
}

// bee notify enable
var notifyEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Ask for permission to show reminder notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotifyEnable,
}

var notifyEnableReset bool

const blockedGuidance = `Notifications are blocked for BeeSmart.

You turned desktop notifications off earlier. To get reminders again:
  - run "bee notify enable --reset" and answer yes, or
  - set notifier = "terminal" under [reminders] in beesmart.toml to show
    reminders in the terminal running "bee watch".`

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyStatusCmd, notifyEnableCmd)
	notifyEnableCmd.Flags().BoolVar(&notifyEnableReset, "reset", false, "Forget an earlier answer and ask again")
}

func openNotifier(cmd *cobra.Command) (remind.Notifier, func(), string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	backing, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open storage: %w", err)
	}
	name := cfg.NotifierName()
	notifier, desktop, err := buildNotifier(cmd, name, backing)
	if err != nil {
		backing.Close()
		return nil, nil, "", err
	}
	if notifyEnableReset && desktop != nil {
		if err := desktop.Reset(cmd.Context()); err != nil {
			backing.Close()
			return nil, nil, "", err
		}
	}
	return notifier, func() { backing.Close() }, name, nil
}

func runNotifyStatus(cmd *cobra.Command, args []string) error {
	notifier, closeFn, name, err := openNotifier(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(cmd.OutOrStdout(), "notifier: %s\npermission: %s\n", name, notifier.Permission())
	return nil
}

func runNotifyEnable(cmd *cobra.Command, args []string) error {
	notifier, closeFn, name, err := openNotifier(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	permission, err := remind.Enable(cmd.Context(), notifier)
	switch {
	case errors.Is(err, remind.ErrBlocked):
		fmt.Fprintln(out, blockedGuidance)
		return err
	case errors.Is(err, remind.ErrUnsupported):
		if name != config.NotifierTerminal {
			fmt.Fprintln(out, `Desktop notifications are not available on this system. Set notifier = "terminal" under [reminders] to see reminders in "bee watch".`)
		}
		return err
	case err != nil:
		return err
	}

	if permission == remind.PermissionGranted {
		fmt.Fprintln(out, "Notifications enabled.")
	} else {
		fmt.Fprintf(out, "Notifications not enabled (%s).\n", permission)
	}
	return nil
}
