package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/config"
	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/internal/notify"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

// buildNotifier returns the notifier named by name ("terminal", "desktop"
// or "both"). The desktop notifier is also returned on its own so callers
// can manage its permission.
func buildNotifier(cmd *cobra.Command, name string, store kv.Store) (remind.Notifier, *notify.Desktop, error) {
	terminal := notify.NewTerminal(cmd.OutOrStdout())
	switch name {
	case "", config.NotifierTerminal:
		return terminal, nil, nil
	case config.NotifierDesktop:
		desktop := notify.NewDesktop(notify.DesktopOptions{KV: store})
		return desktop, desktop, nil
	case config.NotifierBoth:
		desktop := notify.NewDesktop(notify.DesktopOptions{KV: store})
		return notify.Multi{desktop, terminal}, desktop, nil
	default:
		return nil, nil, fmt.Errorf("%w: reminders.notifier = %q", config.ErrInvalidConfig, name)
	}
}
