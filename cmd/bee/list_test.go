package main

import (
	"strings"
	"testing"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

func TestFormatTaskTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local)
	tasks := []todo.Task{
		{
			ID:        "abcd1234",
			Text:      "Call doctor",
			Category:  todo.CategoryHealth,
			Priority:  todo.PriorityHigh,
			CreatedAt: now.Add(-2 * time.Hour),
			DueDate:   "2024-05-01",
		},
		{
			ID:           "efgh5678",
			Text:         "Buy milk",
			Completed:    true,
			Category:     todo.CategoryShopping,
			Priority:     todo.PriorityLow,
			CreatedAt:    now.Add(-3 * 24 * time.Hour),
			DueDate:      "2024-05-03",
			ReminderDate: "2024-05-03T08:00",
		},
	}

	highlight := func(id string, prefixLen int) string {
		return "[" + id[:prefixLen] + "]" + id[prefixLen:]
	}
	out := formatTaskTable(tasks, nil, highlight, now)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), out)
	}

	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "ID DONE PRI CATEGORY DUE REMINDER AGE TEXT" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"[a]bcd1234", "[ ]", "High", "Health", "yesterday (overdue)", "2h ago", "Call doctor"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("expected first row to contain %q, got %q", want, lines[1])
		}
	}
	for _, want := range []string{"[e]fgh5678", "[x]", "tomorrow", "2024-05-03 08:00", "3d ago", "Buy milk"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("expected second row to contain %q, got %q", want, lines[2])
		}
	}
}

func TestEmptyListMessage(t *testing.T) {
	if msg := emptyListMessage(0); !strings.Contains(msg, "No tasks yet") {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := emptyListMessage(3); !strings.Contains(msg, "3 hidden") || !strings.Contains(msg, "--clear") {
		t.Fatalf("unexpected message %q", msg)
	}
}
