// Package testsupport holds helpers shared by package tests and the bee
// testscript suites.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

var (
	buildOnce sync.Once
	beePath   string
	buildErr  error
)

// BuildBee builds the bee binary once and returns its path.
func BuildBee(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "bee-bin-")
		if err != nil {
			buildErr = err
			return
		}

		beePath = filepath.Join(binDir, "bee")
		cmd := exec.Command("go", "build", "-o", beePath, "./cmd/bee")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build bee: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return beePath
}

// SetupScriptEnv configures common environment variables for testscript.
// Every script gets its own HOME and state directory, color is disabled,
// and the parser never reaches a real Ollama server.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("BEE", BuildBee(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("BEE_STATE_DIR", filepath.Join(homeDir, ".local", "state", "beesmart"))
	env.Setenv("NO_COLOR", "1")
	env.Setenv("OLLAMA_HOST", "http://127.0.0.1:1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTaskID finds a task by text in a `bee list --json` dump and stores its
// ID in an env var.
func CmdTaskID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("taskid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: taskid FILE TEXT VAR")
	}

	var items []todo.Task
	data := ts.ReadFile(args[0])
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}

	text := args[1]
	for _, item := range items {
		if item.Text == text {
			ts.Setenv(args[2], item.ID)
			return
		}
	}

	ts.Fatalf("task with text %q not found", text)
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
