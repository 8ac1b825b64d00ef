package ui

import (
	"fmt"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// FormatTimeAgo returns a compact age string like "2m ago".
func FormatTimeAgo(then time.Time, now time.Time) string {
	if then.IsZero() || now.IsZero() {
		return "-"
	}
	return FormatDurationShort(now.Sub(then)) + " ago"
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	seconds := int64(duration.Truncate(time.Second).Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 60*60:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 24*60*60:
		return fmt.Sprintf("%dh", seconds/(60*60))
	default:
		return fmt.Sprintf("%dd", seconds/(24*60*60))
	}
}

// FormatDue describes a task's due date relative to now. Overdue dates are
// highlighted.
func FormatDue(task todo.Task, now time.Time) string {
	if task.DueDate == "" {
		return "-"
	}
	label := task.DueDate
	switch task.DueDate {
	case now.Format(todo.DateLayout):
		label = "today"
	case now.AddDate(0, 0, 1).Format(todo.DateLayout):
		label = "tomorrow"
	case now.AddDate(0, 0, -1).Format(todo.DateLayout):
		label = "yesterday"
	}
	if todo.IsOverdue(task, now) {
		return Overdue(label + " (overdue)")
	}
	return label
}

// FormatReminder shows a reminder as "2024-05-01 10:00".
func FormatReminder(task todo.Task) string {
	at, ok := task.Reminder(time.Local)
	if !ok {
		return "-"
	}
	return at.Format("2006-01-02 15:04")
}
