package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"

	"github.com/beemnet-bee/BeeSmartToDo/internal/validation"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// TaskData represents the data used to render the TOML template.
type TaskData struct {
	ID       string
	Text     string
	Category string
	Priority string
	Due      string
	Reminder string
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t todo.Task) TaskData {
	return TaskData{
		ID:       t.ID,
		Text:     t.Text,
		Category: string(t.Category),
		Priority: string(t.Priority),
		Due:      t.DueDate,
		Reminder: t.ReminderDate,
	}
}

var taskTemplate = template.Must(template.New("task").Funcs(template.FuncMap{
	"categories": func() string { return validation.FormatValidValues(todo.ValidCategories()) },
	"priorities": func() string { return validation.FormatValidValues(todo.ValidPriorities()) },
}).Parse(`# task {{ .ID }}
text = {{ printf "%q" .Text }}
category = {{ printf "%q" .Category }} # {{ categories }}
priority = {{ printf "%q" .Priority }} # {{ priorities }}
due = {{ printf "%q" .Due }} # YYYY-MM-DD, empty for none
reminder = {{ printf "%q" .Reminder }} # YYYY-MM-DDTHH:MM, empty for none
`))

// RenderTaskTOML renders the task data as a TOML string for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask represents the parsed result from the TOML editor output.
type ParsedTask struct {
	Text     string `toml:"text"`
	Category string `toml:"category"`
	Priority string `toml:"priority"`
	Due      string `toml:"due"`
	Reminder string `toml:"reminder"`
}

// ParseTaskTOML parses and validates the TOML content from the editor.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	var parsed ParsedTask
	if _, err := toml.Decode(content, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Text = strings.TrimSpace(parsed.Text)
	parsed.Due = strings.TrimSpace(parsed.Due)
	parsed.Reminder = strings.TrimSpace(parsed.Reminder)

	category, ok := todo.ParseCategory(parsed.Category)
	if !ok {
		return nil, fmt.Errorf("%w %q: must be %s", todo.ErrInvalidCategory, parsed.Category, validation.FormatValidValues(todo.ValidCategories()))
	}
	parsed.Category = string(category)
	priority, ok := todo.ParsePriority(parsed.Priority)
	if !ok {
		return nil, fmt.Errorf("%w %q: must be %s", todo.ErrInvalidPriority, parsed.Priority, validation.FormatValidValues(todo.ValidPriorities()))
	}
	parsed.Priority = string(priority)

	if err := todo.ValidateDraft(parsed.draft()); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (p *ParsedTask) draft() todo.Draft {
	return todo.Draft{
		Text:         p.Text,
		Category:     todo.Category(p.Category),
		Priority:     todo.Priority(p.Priority),
		DueDate:      p.Due,
		ReminderDate: p.Reminder,
	}
}

// ToUpdateOptions converts a ParsedTask to todo.UpdateOptions. Every field
// is set, so clearing due or reminder in the editor clears it on the task.
func (p *ParsedTask) ToUpdateOptions() todo.UpdateOptions {
	category := todo.Category(p.Category)
	priority := todo.Priority(p.Priority)
	return todo.UpdateOptions{
		Text:         &p.Text,
		Category:     &category,
		Priority:     &priority,
		DueDate:      &p.Due,
		ReminderDate: &p.Reminder,
	}
}

// EditTask opens the editor for a task and returns the parsed result.
func EditTask(existing todo.Task) (*ParsedTask, error) {
	content, err := RenderTaskTOML(DataFromTask(existing))
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "bee-task-*.toml")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseTaskTOML(string(edited))
}
