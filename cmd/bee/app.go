package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/config"
	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/internal/paths"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// app bundles the config and stores a command works against.
type app struct {
	cfg   *config.Config
	kv    kv.Store
	store *todo.Store
	fired *remind.FiredSet
}

func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

// openApp loads config and opens the task store. Deleting a task or
// changing its reminder clears the fired record for it.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	backing, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	ctx := cmd.Context()
	fired := remind.LoadFiredSet(ctx, backing, newLogger(cmd, "remind: "))
	store := todo.Open(ctx, todo.OpenOptions{
		KV:     backing,
		Logger: newLogger(cmd, "todo: "),
	})
	store.SetOnChange(fired.HandleChange)

	return &app{cfg: cfg, kv: backing, store: store, fired: fired}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}

// resolveIDs resolves every argument as an id prefix.
func (a *app) resolveIDs(args []string) ([]string, error) {
	resolved := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := a.store.Resolve(arg)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, id)
	}
	return resolved, nil
}
