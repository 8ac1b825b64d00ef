// Package notify provides remind.Notifier implementations for the terminal
// and the desktop.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

const terminalWidth = 60

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("148")).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("148"))
)

// Terminal prints notifications to a writer. It is always permitted.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal returns a notifier that writes to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Permission() remind.Permission {
	return remind.PermissionGranted
}

func (t *Terminal) RequestPermission(ctx context.Context) (remind.Permission, error) {
	return remind.PermissionGranted, nil
}

// Notify writes n as a bordered box with the body wrapped.
func (t *Terminal) Notify(ctx context.Context, n remind.Notification) error {
	body := wordwrap.String(n.Body, terminalWidth-4)
	box := boxStyle.Render(titleStyle.Render(n.Title) + "\n" + body)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, box)
	return err
}
