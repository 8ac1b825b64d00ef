package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/internal/config"
	"github.com/beemnet-bee/BeeSmartToDo/internal/testsupport"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func writeGlobal(t *testing.T, home, content string) {
	t.Helper()
	writeFile(t, filepath.Join(home, ".config", "beesmart", "config.toml"), content)
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.ReminderInterval() != remind.DefaultInterval {
		t.Errorf("expected default interval, got %v", cfg.ReminderInterval())
	}
	if cfg.NotifierName() != config.NotifierTerminal {
		t.Errorf("expected terminal notifier, got %q", cfg.NotifierName())
	}
	view := cfg.DefaultView()
	if view.Sort != todo.SortNewest || view.Category != todo.FilterAll || view.Priority != todo.FilterAll {
		t.Errorf("unexpected default view %+v", view)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), `
[storage]
backend = "sqlite"
path = "/tmp/bee.db"

[parser]
mode = "model"
model = "qwen2.5"
host = "http://localhost:11434"

[reminders]
interval = "30s"
notifier = "both"

[view]
sort = "due-date-asc"
category = "work"
priority = "High"
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/bee.db" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Parser.Mode != "model" || cfg.Parser.Model != "qwen2.5" || cfg.Parser.Host != "http://localhost:11434" {
		t.Errorf("unexpected parser %+v", cfg.Parser)
	}
	if cfg.ReminderInterval() != 30*time.Second {
		t.Errorf("interval = %v, expected 30s", cfg.ReminderInterval())
	}
	if cfg.NotifierName() != config.NotifierBoth {
		t.Errorf("notifier = %q, expected both", cfg.NotifierName())
	}
	view := cfg.DefaultView()
	if view.Sort != todo.SortDueDateAsc || view.Category != todo.CategoryFilter(todo.CategoryWork) || view.Priority != todo.PriorityFilter(todo.PriorityHigh) {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeGlobal(t, home, `
[parser]
mode = "model"
model = "llama3.2"

[reminders]
notifier = "desktop"
`)
	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), `
[parser]
mode = "rules"

[reminders]
notifier = ""
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Parser.Mode != "rules" {
		t.Errorf("expected project mode to win, got %q", cfg.Parser.Mode)
	}
	if cfg.Parser.Model != "llama3.2" {
		t.Errorf("expected global model to remain, got %q", cfg.Parser.Model)
	}
	if cfg.Reminders.Notifier != "" {
		t.Errorf("expected explicit empty project value to win, got %q", cfg.Reminders.Notifier)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), `this is not valid toml [`)

	if _, err := config.Load(tmpDir); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), "[storage]\nbackedn = \"file\"\n")

	_, err := config.Load(tmpDir)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"backend":  "[storage]\nbackend = \"postgres\"\n",
		"mode":     "[parser]\nmode = \"magic\"\n",
		"interval": "[reminders]\ninterval = \"soon\"\n",
		"zero":     "[reminders]\ninterval = \"0s\"\n",
		"notifier": "[reminders]\nnotifier = \"pager\"\n",
		"sort":     "[view]\nsort = \"alphabetical\"\n",
		"category": "[view]\ncategory = \"Errands\"\n",
		"priority": "[view]\npriority = \"Urgent\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			testsupport.SetupTestHome(t)
			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, config.ProjectFile), content)

			_, err := config.Load(tmpDir)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
