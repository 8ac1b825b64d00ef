// Package config handles loading beesmart.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/internal/paths"
	"github.com/beemnet-bee/BeeSmartToDo/parse"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// ProjectFile is the name of the per-directory config file.
const ProjectFile = "beesmart.toml"

// Notifier names accepted in [reminders].
const (
	NotifierTerminal = "terminal"
	NotifierDesktop  = "desktop"
	NotifierBoth     = "both"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the beesmart.toml configuration file.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Parser    Parser    `toml:"parser"`
	Reminders Reminders `toml:"reminders"`
	View      View      `toml:"view"`
}

// Storage selects where tasks are kept.
type Storage struct {
	// Backend is "file" or "sqlite". Empty means "file".
	Backend string `toml:"backend"`
	// Path is the state directory for the file backend or the database file
	// for sqlite. Empty uses the default under the state directory.
	Path string `toml:"path"`
}

// Parser configures the smart-add parser.
type Parser struct {
	Mode  string `toml:"mode"`
	Model string `toml:"model"`
	Host  string `toml:"host"`
}

// Reminders configures the reminder scheduler.
type Reminders struct {
	Interval string `toml:"interval"`
	Notifier string `toml:"notifier"`
}

// View holds the default list projection.
type View struct {
	Sort     string `toml:"sort"`
	Category string `toml:"category"`
	Priority string `toml:"priority"`
}

// Load loads configuration from dir and the global config file.
// Returns an empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// GlobalPath returns the location of the global config file.
func GlobalPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, toml.MetaData{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	pick := func(section, key, project, global string) string {
		return mergeString(projectMeta.IsDefined(section, key), project, global)
	}

	merged := Config{}
	merged.Storage.Backend = pick("storage", "backend", projectCfg.Storage.Backend, globalCfg.Storage.Backend)
	merged.Storage.Path = pick("storage", "path", projectCfg.Storage.Path, globalCfg.Storage.Path)
	merged.Parser.Mode = pick("parser", "mode", projectCfg.Parser.Mode, globalCfg.Parser.Mode)
	merged.Parser.Model = pick("parser", "model", projectCfg.Parser.Model, globalCfg.Parser.Model)
	merged.Parser.Host = pick("parser", "host", projectCfg.Parser.Host, globalCfg.Parser.Host)
	merged.Reminders.Interval = pick("reminders", "interval", projectCfg.Reminders.Interval, globalCfg.Reminders.Interval)
	merged.Reminders.Notifier = pick("reminders", "notifier", projectCfg.Reminders.Notifier, globalCfg.Reminders.Notifier)
	merged.View.Sort = pick("view", "sort", projectCfg.View.Sort, globalCfg.View.Sort)
	merged.View.Category = pick("view", "category", projectCfg.View.Category, globalCfg.View.Category)
	merged.View.Priority = pick("view", "priority", projectCfg.View.Priority, globalCfg.View.Priority)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

// Validate checks every configured value. Empty values are allowed and mean
// the default.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key, value string) {
		errs = append(errs, fmt.Errorf("%w: %s = %q", ErrInvalidConfig, key, value))
	}

	switch c.Storage.Backend {
	case "", kv.BackendFile, kv.BackendSQLite:
	default:
		invalid("storage.backend", c.Storage.Backend)
	}
	switch c.Parser.Mode {
	case "", parse.ModeRules, parse.ModeModel:
	default:
		invalid("parser.mode", c.Parser.Mode)
	}
	if c.Reminders.Interval != "" {
		if d, err := time.ParseDuration(c.Reminders.Interval); err != nil || d <= 0 {
			invalid("reminders.interval", c.Reminders.Interval)
		}
	}
	switch c.Reminders.Notifier {
	case "", NotifierTerminal, NotifierDesktop, NotifierBoth:
	default:
		invalid("reminders.notifier", c.Reminders.Notifier)
	}
	if _, ok := todo.ParseSortOrder(c.View.Sort); !ok {
		invalid("view.sort", c.View.Sort)
	}
	if c.View.Category != "" {
		if _, ok := todo.ParseCategoryFilter(c.View.Category); !ok {
			invalid("view.category", c.View.Category)
		}
	}
	if c.View.Priority != "" {
		if _, ok := todo.ParsePriorityFilter(c.View.Priority); !ok {
			invalid("view.priority", c.View.Priority)
		}
	}
	return errors.Join(errs...)
}

// ReminderInterval returns the configured tick interval or the default.
func (c *Config) ReminderInterval() time.Duration {
	if d, err := time.ParseDuration(c.Reminders.Interval); err == nil && d > 0 {
		return d
	}
	return remind.DefaultInterval
}

// NotifierName returns the configured notifier or "terminal".
func (c *Config) NotifierName() string {
	if c.Reminders.Notifier == "" {
		return NotifierTerminal
	}
	return c.Reminders.Notifier
}

// DefaultView returns the configured list projection. Unset fields use
// "All" filters and newest-first.
func (c *Config) DefaultView() todo.View {
	view := todo.View{
		Category: todo.CategoryFilter(todo.FilterAll),
		Priority: todo.PriorityFilter(todo.FilterAll),
		Sort:     todo.SortNewest,
	}
	if sort, ok := todo.ParseSortOrder(c.View.Sort); ok {
		view.Sort = sort
	}
	if c.View.Category != "" {
		if category, ok := todo.ParseCategoryFilter(c.View.Category); ok {
			view.Category = category
		}
	}
	if c.View.Priority != "" {
		if priority, ok := todo.ParsePriorityFilter(c.View.Priority); ok {
			view.Priority = priority
		}
	}
	return view
}
