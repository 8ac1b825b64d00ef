package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

type fakeOllama struct {
	t        *testing.T
	status   int
	response string

	mu       sync.Mutex
	requests []api.GenerateRequest
}

func (f *fakeOllama) received() []api.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.GenerateRequest(nil), f.requests...)
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/generate" {
		http.NotFound(w, r)
		return
	}
	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("failed to decode request: %v", err)
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/x-ndjson")
	if f.status != 0 {
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]string{"error": "model \"missing\" not found"})
		return
	}
	json.NewEncoder(w).Encode(api.GenerateResponse{
		Model:    req.Model,
		Response: f.response,
		Done:     true,
	})
}

func newFakeParser(t *testing.T, fake *fakeOllama) (*ModelParser, *bytes.Buffer) {
	t.Helper()
	fake.t = t
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	p, err := NewModelParser(ModelOptions{
		Host:       server.URL,
		Model:      "test-model",
		HTTPClient: server.Client(),
		Now:        func() time.Time { return parseNow },
		Logger:     log.New(&logs, "", 0),
	})
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	return p, &logs
}

func TestModelParser_Parse(t *testing.T) {
	fake := &fakeOllama{response: `{"tasks":[
		{"text":"Buy milk","category":"Shopping","priority":"High","dueDate":"2024-04-21"},
		{"text":"Call doctor","category":"Health","priority":"Medium","dueDate":"2024-05-01","reminderDate":"2024-05-01T10:00"}
	]}`}
	p, _ := newFakeParser(t, fake)

	drafts, err := p.Parse(context.Background(), "Buy milk tomorrow\nCall doctor at 10am on May 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	want := []todo.Draft{
		{Text: "Buy milk", Category: todo.CategoryShopping, Priority: todo.PriorityHigh, DueDate: "2024-04-21"},
		{Text: "Call doctor", Category: todo.CategoryHealth, Priority: todo.PriorityMedium, DueDate: "2024-05-01", ReminderDate: "2024-05-01T10:00"},
	}
	if len(drafts) != len(want) {
		t.Fatalf("expected %d drafts, got %+v", len(want), drafts)
	}
	for i := range want {
		if drafts[i] != want[i] {
			t.Errorf("draft %d: expected %+v, got %+v", i, want[i], drafts[i])
		}
	}

	requests := fake.received()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	req := requests[0]
	if req.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", req.Model)
	}
	if req.Stream == nil || *req.Stream {
		t.Error("expected a non-streaming request")
	}
	if !strings.Contains(string(req.Format), `"enum"`) {
		t.Errorf("expected JSON schema format, got %s", req.Format)
	}
	if !strings.Contains(req.System, "2024-04-20") {
		t.Errorf("expected system prompt to include today's date, got %q", req.System)
	}
}

func TestModelParser_DropsMalformedItems(t *testing.T) {
	fake := &fakeOllama{response: `{"tasks":[
		{"text":"ok","category":"Work","priority":"Low"},
		{"text":"bad category","category":"Errands","priority":"Low"},
		{"text":"bad priority","category":"Work","priority":"Urgent"},
		{"text":"   ","category":"Work","priority":"Low"},
		{"text":"bad date","category":"Work","priority":"Low","dueDate":"next week"}
	]}`}
	p, logs := newFakeParser(t, fake)

	drafts, err := p.Parse(context.Background(), "lots of things")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Text != "ok" {
		t.Fatalf("expected only the well-formed item, got %+v", drafts)
	}
	if got := strings.Count(logs.String(), "dropping model task"); got != 4 {
		t.Fatalf("expected 4 dropped items to be logged, got %d: %s", got, logs.String())
	}
}

func TestModelParser_AllMalformed(t *testing.T) {
	fake := &fakeOllama{response: `{"tasks":[{"text":"x","category":"Nope","priority":"Low"}]}`}
	p, _ := newFakeParser(t, fake)

	if _, err := p.Parse(context.Background(), "x"); !errors.Is(err, ErrAllMalformed) {
		t.Fatalf("expected ErrAllMalformed, got %v", err)
	}
}

func TestModelParser_UndecodableResponse(t *testing.T) {
	fake := &fakeOllama{response: `Sure! Here are your tasks:`}
	p, _ := newFakeParser(t, fake)

	if _, err := p.Parse(context.Background(), "x"); !errors.Is(err, ErrAllMalformed) {
		t.Fatalf("expected ErrAllMalformed, got %v", err)
	}
}

func TestModelParser_RemoteError(t *testing.T) {
	fake := &fakeOllama{status: http.StatusNotFound}
	p, _ := newFakeParser(t, fake)

	_, err := p.Parse(context.Background(), "x")
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestModelParser_BlankInputSkipsRequest(t *testing.T) {
	fake := &fakeOllama{}
	p, _ := newFakeParser(t, fake)

	if _, err := p.Parse(context.Background(), "\n \n"); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
	if n := len(fake.received()); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

type generatorFunc func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error

func (f generatorFunc) Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
	return f(ctx, req, fn)
}

func TestModelParser_StreamedChunksAreJoined(t *testing.T) {
	chunks := []string{`{"tasks":[{"text":"Read",`, `"category":"Other","priority":"Low"}]}`}
	client := generatorFunc(func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
		for _, c := range chunks {
			if err := fn(api.GenerateResponse{Response: c}); err != nil {
				return err
			}
		}
		return nil
	})
	p := NewModelParserWithClient(client, ModelOptions{Logger: log.New(io.Discard, "", 0)})

	drafts, err := p.Parse(context.Background(), "read a book")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Category != todo.CategoryOther {
		t.Fatalf("unexpected drafts %+v", drafts)
	}
}
