package remind

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// FiredKey is the kv key holding the fired set.
const FiredKey = "firedReminders"

// FiredSet records which reminders have already produced a notification.
// Each entry maps a task id to the reminder value that fired, so a task whose
// reminder has since changed is eligible again even if the entry was never
// explicitly forgotten.
type FiredSet struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *log.Logger
	fired  map[string]string
}

// LoadFiredSet reads the fired set from store. A nil store keeps the set in
// memory only. Read failures are logged and start from an empty set.
func LoadFiredSet(ctx context.Context, store kv.Store, logger *log.Logger) *FiredSet {
	if logger == nil {
		logger = log.New(os.Stderr, "remind: ", log.LstdFlags)
	}
	f := &FiredSet{kv: store, logger: logger, fired: make(map[string]string)}
	f.Reload(ctx)
	return f
}

// Reload replaces the in-memory set with the persisted one.
func (f *FiredSet) Reload(ctx context.Context) {
	if f.kv == nil {
		return
	}
	raw, ok, err := f.kv.Get(ctx, FiredKey)
	if err != nil {
		f.logger.Printf("failed to read fired reminders: %v", err)
		return
	}

	fired := make(map[string]string)
	if ok {
		if err := json.Unmarshal([]byte(raw), &fired); err != nil {
			f.logger.Printf("failed to parse fired reminders, starting empty: %v", err)
			fired = make(map[string]string)
		}
	}

	f.mu.Lock()
	f.fired = fired
	f.mu.Unlock()
}

// Has reports whether t's current reminder has already fired.
func (f *FiredSet) Has(t todo.Task) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.fired[t.ID]
	return ok && value == t.ReminderDate
}

// Mark records that t's current reminder fired.
func (f *FiredSet) Mark(ctx context.Context, t todo.Task) {
	f.apply(ctx, func(fired map[string]string) {
		fired[t.ID] = t.ReminderDate
	})
}

// Forget clears the record for id.
func (f *FiredSet) Forget(ctx context.Context, id string) {
	f.apply(ctx, func(fired map[string]string) {
		delete(fired, id)
	})
}

// HandleChange forgets id when its task is deleted or its reminder is
// edited.
func (f *FiredSet) HandleChange(c todo.Change) {
	if c.Kind == todo.ChangeDeleted || (c.Kind == todo.ChangeUpdated && c.ReminderChanged) {
		f.Forget(context.Background(), c.ID)
	}
}

// Prune drops records for tasks that no longer exist or whose reminder has
// changed.
func (f *FiredSet) Prune(ctx context.Context, tasks []todo.Task) {
	current := make(map[string]string, len(tasks))
	for _, t := range tasks {
		current[t.ID] = t.ReminderDate
	}
	stale := func(fired map[string]string) bool {
		for id, value := range fired {
			if reminder, ok := current[id]; !ok || reminder != value {
				return true
			}
		}
		return false
	}

	f.mu.Lock()
	changed := stale(f.fired)
	f.mu.Unlock()
	if !changed {
		return
	}

	f.apply(ctx, func(fired map[string]string) {
		for id, value := range fired {
			if reminder, ok := current[id]; !ok || reminder != value {
				delete(fired, id)
			}
		}
	})
}

// Len returns the number of recorded reminders.
func (f *FiredSet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fired)
}

// apply makes change to the in-memory set and to the latest persisted set,
// so records written by other processes since the last reload are kept.
func (f *FiredSet) apply(ctx context.Context, change func(fired map[string]string)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	change(f.fired)
	if f.kv == nil {
		return
	}

	err := f.kv.Update(ctx, FiredKey, func(raw string, ok bool) (string, error) {
		fired := make(map[string]string)
		if ok {
			if err := json.Unmarshal([]byte(raw), &fired); err != nil {
				f.logger.Printf("failed to parse fired reminders, replacing them: %v", err)
				fired = make(map[string]string)
			}
		}
		change(fired)
		data, err := json.Marshal(fired)
		if err != nil {
			return "", fmt.Errorf("encode fired reminders: %w", err)
		}
		f.fired = fired
		return string(data), nil
	})
	if err != nil {
		f.logger.Printf("failed to save fired reminders: %v", err)
	}
}
