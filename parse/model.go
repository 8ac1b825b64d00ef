package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	internalstrings "github.com/beemnet-bee/BeeSmartToDo/internal/strings"
	"github.com/beemnet-bee/BeeSmartToDo/internal/validation"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// DefaultModel is the Ollama model used when none is configured.
const DefaultModel = "llama3.2"

// Generator is the subset of the Ollama client used by ModelParser.
type Generator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// ModelOptions configures NewModelParser.
type ModelOptions struct {
	// Host is the Ollama base URL. Empty uses OLLAMA_HOST or the default.
	Host string

	// Model is the model name. Empty uses DefaultModel.
	Model string

	// HTTPClient is used when Host is set. Nil uses http.DefaultClient.
	HTTPClient *http.Client

	Now    func() time.Time
	Logger *log.Logger
}

// ModelParser asks a language model to split text into drafts.
type ModelParser struct {
	client Generator
	model  string
	now    func() time.Time
	logger *log.Logger
}

// NewModelParser creates a parser backed by an Ollama server.
func NewModelParser(opts ModelOptions) (*ModelParser, error) {
	var client *api.Client
	if opts.Host == "" {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
	} else {
		base, err := url.Parse(opts.Host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host %q: %w", opts.Host, err)
		}
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(base, httpClient)
	}
	return NewModelParserWithClient(client, opts), nil
}

// NewModelParserWithClient creates a parser that uses client for requests.
// Host and HTTPClient in opts are ignored.
func NewModelParserWithClient(client Generator, opts ModelOptions) *ModelParser {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "parse: ", log.LstdFlags)
	}
	return &ModelParser{
		client: client,
		model:  opts.Model,
		now:    opts.Now,
		logger: opts.Logger,
	}
}

const systemPrompt = `You turn a user's to-do notes into structured tasks.
Each non-empty line describes one task. For every task return:
- text: the task description without category, priority or date words
- category: one of %s
- priority: one of %s
- dueDate: the due date as YYYY-MM-DD, only if one is mentioned
- reminderDate: the reminder time as YYYY-MM-DDTHH:MM, only if a time is mentioned
Today is %s. Resolve relative dates like "today" and "tomorrow" against it.
Default to category Personal and priority Medium.`

type modelResponse struct {
	Tasks []modelTask `json:"tasks"`
}

type modelTask struct {
	Text         string `json:"text"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	DueDate      string `json:"dueDate,omitempty"`
	ReminderDate string `json:"reminderDate,omitempty"`
}

// Parse sends text to the model and returns the well-formed drafts from its
// answer in response order. Items with an unknown category or priority,
// empty text or malformed dates are dropped.
func (p *ModelParser) Parse(ctx context.Context, text string) ([]todo.Draft, error) {
	if len(internalstrings.NonBlankLines(text)) == 0 {
		return nil, ErrNoTasks
	}

	now := p.now()
	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		System: fmt.Sprintf(systemPrompt, validation.FormatValidValues(todo.ValidCategories()), validation.FormatValidValues(todo.ValidPriorities()), now.Format("2006-01-02 (Monday)")),
		Prompt: text,
		Format: responseSchema(),
		Stream: &stream,
	}

	var out strings.Builder
	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}

	var decoded modelResponse
	if err := json.Unmarshal([]byte(out.String()), &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrAllMalformed, err)
	}
	if len(decoded.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	drafts := make([]todo.Draft, 0, len(decoded.Tasks))
	for i, item := range decoded.Tasks {
		draft, err := item.draft()
		if err != nil {
			p.logger.Printf("dropping model task %d: %v", i+1, err)
			continue
		}
		drafts = append(drafts, draft)
	}
	if len(drafts) == 0 {
		return nil, ErrAllMalformed
	}
	return drafts, nil
}

func (item modelTask) draft() (todo.Draft, error) {
	draft := todo.Draft{
		Text:         strings.TrimSpace(item.Text),
		Category:     todo.Category(item.Category),
		Priority:     todo.Priority(item.Priority),
		DueDate:      strings.TrimSpace(item.DueDate),
		ReminderDate: strings.TrimSpace(item.ReminderDate),
	}
	if err := todo.ValidateDraft(draft); err != nil {
		return todo.Draft{}, err
	}
	return draft, nil
}

func responseSchema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":         map[string]any{"type": "string"},
						"category":     map[string]any{"type": "string", "enum": todo.ValidCategories()},
						"priority":     map[string]any{"type": "string", "enum": todo.ValidPriorities()},
						"dueDate":      map[string]any{"type": "string"},
						"reminderDate": map[string]any{"type": "string"},
					},
					"required": []string{"text", "category", "priority"},
				},
			},
		},
		"required": []string{"tasks"},
	}
	data, _ := json.Marshal(schema)
	return data
}
