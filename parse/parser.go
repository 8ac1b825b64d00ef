// Package parse turns free-form text into task drafts.
//
// Two implementations share the Parser interface: RuleParser applies a fixed
// set of keyword and date patterns locally, and ModelParser asks an Ollama
// model to do the same job.
package parse

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

var (
	// ErrNoTasks is returned when the input yields no drafts.
	ErrNoTasks = errors.New("no tasks found in input")

	// ErrAllMalformed is returned when every item in a model response was
	// rejected.
	ErrAllMalformed = errors.New("no well-formed tasks in model response")

	// ErrRemote is returned when the model request fails.
	ErrRemote = errors.New("task parsing request failed")

	// ErrUnknownMode is returned by New for an unsupported parser mode.
	ErrUnknownMode = errors.New("unknown parser mode")
)

// Parser converts one block of text into drafts, one per non-blank line for
// the rule-based implementation. Implementations may block on the network;
// callers pass a context and must leave the task store untouched on error.
type Parser interface {
	Parse(ctx context.Context, text string) ([]todo.Draft, error)
}

// PlaceholderText is used for a line that has no text left after keywords
// are removed.
const PlaceholderText = "Untitled Task"

// Parser modes accepted by New.
const (
	ModeRules = "rules"
	ModeModel = "model"
)

// Options configures New.
type Options struct {
	// Mode selects the implementation. Empty means ModeRules.
	Mode string

	// Model is the Ollama model name for ModeModel.
	Model string

	// Host is the Ollama base URL. Empty uses OLLAMA_HOST or the default.
	Host string

	// HTTPClient is used for model requests. Nil uses http.DefaultClient.
	HTTPClient *http.Client

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time

	// Logger receives dropped model items. Nil logs to stderr.
	Logger *log.Logger
}

// New returns the parser for opts.Mode.
func New(opts Options) (Parser, error) {
	switch opts.Mode {
	case "", ModeRules:
		return &RuleParser{Now: opts.Now}, nil
	case ModeModel:
		return NewModelParser(ModelOptions{
			Host:       opts.Host,
			Model:      opts.Model,
			HTTPClient: opts.HTTPClient,
			Now:        opts.Now,
			Logger:     opts.Logger,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}
