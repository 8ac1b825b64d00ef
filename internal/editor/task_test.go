package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

func sampleTask() todo.Task {
	return todo.Task{
		ID:           "abc12345",
		Text:         `Say "hi" to Sam`,
		Category:     todo.CategoryWork,
		Priority:     todo.PriorityHigh,
		CreatedAt:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		DueDate:      "2024-05-03",
		ReminderDate: "2024-05-02T09:00",
	}
}

func TestRenderTaskTOML(t *testing.T) {
	content, err := RenderTaskTOML(DataFromTask(sampleTask()))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	for _, want := range []string{
		"# task abc12345",
		`text = "Say \"hi\" to Sam"`,
		`category = "Work" # Work, Personal, Shopping, Health, Other`,
		`priority = "High" # High, Medium, Low`,
		`due = "2024-05-03"`,
		`reminder = "2024-05-02T09:00"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in:\n%s", want, content)
		}
	}
}

func TestParseTaskTOML_RoundTrip(t *testing.T) {
	task := sampleTask()
	content, err := RenderTaskTOML(DataFromTask(task))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	want := ParsedTask{Text: task.Text, Category: "Work", Priority: "High", Due: task.DueDate, Reminder: task.ReminderDate}
	if *parsed != want {
		t.Fatalf("expected %+v, got %+v", want, *parsed)
	}
}

func TestParseTaskTOML_NormalizesAndClears(t *testing.T) {
	parsed, err := ParseTaskTOML(`
text = "  Buy milk "
category = "shopping"
priority = "low"
due = ""
reminder = ""
`)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Text != "Buy milk" || parsed.Category != "Shopping" || parsed.Priority != "Low" {
		t.Fatalf("unexpected parse %+v", parsed)
	}

	opts := parsed.ToUpdateOptions()
	if opts.DueDate == nil || *opts.DueDate != "" || opts.ReminderDate == nil || *opts.ReminderDate != "" {
		t.Fatalf("expected cleared due and reminder to be set explicitly, got %+v", opts)
	}
}

func TestParseTaskTOML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty text", `text = " "` + "\ncategory = \"Work\"\npriority = \"High\"\n", todo.ErrEmptyText},
		{"category", "text = \"x\"\ncategory = \"Errands\"\npriority = \"High\"\n", todo.ErrInvalidCategory},
		{"priority", "text = \"x\"\ncategory = \"Work\"\npriority = \"Urgent\"\n", todo.ErrInvalidPriority},
		{"due", "text = \"x\"\ncategory = \"Work\"\npriority = \"High\"\ndue = \"soon\"\n", todo.ErrInvalidDueDate},
		{"reminder", "text = \"x\"\ncategory = \"Work\"\npriority = \"High\"\nreminder = \"2024-05-02\"\n", todo.ErrInvalidReminder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTaskTOML(tt.content); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ParseTaskTOML("text = "); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEditTask_UsesEditor(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	body := "#!/bin/sh\nsed -i.bak 's/^priority = .*/priority = \"Low\"/' \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write editor: %v", err)
	}
	t.Setenv("EDITOR", script)

	parsed, err := EditTask(sampleTask())
	if err != nil {
		t.Fatalf("EditTask failed: %v", err)
	}
	if parsed.Priority != "Low" || parsed.Category != "Work" {
		t.Fatalf("expected only priority to change, got %+v", parsed)
	}
}
