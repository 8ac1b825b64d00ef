package todo

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func openTestStore(t *testing.T, backing kv.Store) *Store {
	t.Helper()
	if backing == nil {
		backing = kv.NewMemory()
	}
	return Open(context.Background(), OpenOptions{
		KV:     backing,
		Logger: discardLogger(),
		Now:    func() time.Time { return testNow },
	})
}

func mustAdd(t *testing.T, s *Store, text string) Task {
	t.Helper()
	task, err := s.Add(Draft{Text: text})
	if err != nil {
		t.Fatalf("failed to add %q: %v", text, err)
	}
	return task
}

func taskTexts(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}
