package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	idPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))

	priorityStyles = map[string]lipgloss.Style{
		"High":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		"Medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"Low":    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	}
)

// colorEnabled is replaced in tests.
var colorEnabled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ColorEnabled reports whether stdout is a color-capable terminal.
func ColorEnabled() bool {
	return colorEnabled()
}

func render(style lipgloss.Style, value string) string {
	if value == "" || !colorEnabled() {
		return value
	}
	return style.Render(value)
}

// HighlightID returns an ID with its unique prefix highlighted.
func HighlightID(id string, prefixLen int) string {
	if id == "" || prefixLen <= 0 || prefixLen > len(id) {
		return id
	}
	if !colorEnabled() {
		return id
	}
	return idPrefixStyle.Render(id[:prefixLen]) + id[prefixLen:]
}

// Priority colors a priority name.
func Priority(name string) string {
	style, ok := priorityStyles[name]
	if !ok {
		return name
	}
	return render(style, name)
}

// Overdue marks text as overdue.
func Overdue(value string) string {
	return render(overdueStyle, value)
}

// Muted dims secondary text.
func Muted(value string) string {
	return render(mutedStyle, value)
}

// Done styles the text of a completed task.
func Done(value string) string {
	return render(doneStyle, value)
}
