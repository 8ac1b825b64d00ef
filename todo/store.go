package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/internal/ids"
	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
)

// DefaultKey is the kv key holding the task list.
const DefaultKey = "todos"

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeToggled ChangeKind = "toggled"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes a single task mutation.
type Change struct {
	Kind ChangeKind
	ID   string

	// ReminderChanged is set when an update supplied a reminder, even if
	// the value is unchanged.
	ReminderChanged bool
}

// Store holds the task list and mirrors it to a kv.Store.
// It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	key      string
	logger   *log.Logger
	now      func() time.Time
	seed     []Task
	tasks    []Task
	onChange func(Change)

	// unsaved is set while the in-memory list holds changes the kv store
	// rejected. Mutations then build on the in-memory list instead of the
	// persisted one.
	unsaved bool
}

// OpenOptions configures how the store is opened.
type OpenOptions struct {
	// KV persists the task list. If nil, an in-memory store is used.
	KV kv.Store

	// Key is the kv key. If empty, DefaultKey is used.
	Key string

	// Logger receives load and save failures. If nil, logs go to stderr.
	Logger *log.Logger

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	// Seed is the task list used when nothing usable is persisted.
	Seed []Task
}

// Open loads the task list. Loading never fails: a missing key yields the
// seed list, and an unreadable or malformed value is logged and replaced by
// the seed list.
func Open(ctx context.Context, opts OpenOptions) *Store {
	if opts.KV == nil {
		opts.KV = kv.NewMemory()
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "todo: ", log.LstdFlags)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		kv:     opts.KV,
		key:    opts.Key,
		logger: opts.Logger,
		now:    opts.Now,
		seed:   slices.Clone(opts.Seed),
	}
	s.mu.Lock()
	s.load(ctx)
	s.mu.Unlock()
	return s
}

// SetOnChange registers fn to be called after every successful mutation.
// fn runs without the store lock held.
func (s *Store) SetOnChange(fn func(Change)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Reload re-reads the task list from the kv store, picking up writes made
// by other processes. Changes that could not be saved are kept instead.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsaved {
		return
	}
	s.load(ctx)
}

// Tasks returns a copy of the task list in collection order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with the given full id.
func (s *Store) Get(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i], nil
}

// Resolve returns the full id of the task matching prefix.
func (s *Store) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	index := NewIDIndex(s.tasks)
	s.mu.Unlock()
	return index.Resolve(prefix)
}

// PrefixLengths returns the shortest unique prefix length for each task id.
func (s *Store) PrefixLengths() map[string]int {
	s.mu.Lock()
	index := NewIDIndex(s.tasks)
	s.mu.Unlock()
	return index.PrefixLengths()
}

// Snapshot serializes the task list as a JSON array.
func (s *Store) Snapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeTasks(s.tasks)
}

// Add validates draft and inserts it at the front of the list.
func (s *Store) Add(draft Draft) (Task, error) {
	if err := ValidateDraft(NormalizeDraft(draft)); err != nil {
		return Task{}, err
	}
	added, err := s.AddMany([]Draft{draft})
	if err != nil {
		return Task{}, err
	}
	return added[0], nil
}

// AddMany inserts every valid draft at the front of the list, keeping the
// batch in input order. Invalid drafts are skipped and reported in the
// returned error.
func (s *Store) AddMany(drafts []Draft) ([]Task, error) {
	var errs []error
	valid := make([]Draft, 0, len(drafts))
	for i, d := range drafts {
		d = NormalizeDraft(d)
		if err := ValidateDraft(d); err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", i+1, err))
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return nil, errors.Join(errs...)
	}

	created := s.now().UTC().Truncate(time.Millisecond)
	var added []Task
	err := s.mutate(func(tasks []Task) ([]Task, error) {
		taken := make(map[string]bool, len(tasks)+len(valid))
		for _, t := range tasks {
			taken[t.ID] = true
		}
		added = make([]Task, 0, len(valid))
		for _, d := range valid {
			id := ids.NewUnique(ids.DefaultLength, func(id string) bool { return taken[id] })
			taken[id] = true
			added = append(added, Task{
				ID:           id,
				Text:         d.Text,
				Category:     d.Category,
				Priority:     d.Priority,
				CreatedAt:    created,
				DueDate:      d.DueDate,
				ReminderDate: d.ReminderDate,
			})
		}
		return append(slices.Clone(added), tasks...), nil
	})
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(added))
	for _, t := range added {
		changes = append(changes, Change{Kind: ChangeAdded, ID: t.ID})
	}
	s.publish(changes...)
	return added, errors.Join(errs...)
}

// Toggle flips the completion state of the task with the given id.
func (s *Store) Toggle(id string) (Task, error) {
	var task Task
	err := s.mutate(func(tasks []Task) ([]Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		tasks[i].Completed = !tasks[i].Completed
		task = tasks[i]
		return tasks, nil
	})
	if err != nil {
		return Task{}, err
	}

	s.publish(Change{Kind: ChangeToggled, ID: id})
	return task, nil
}

// UpdateOptions configures which fields to update.
// Nil fields are left unchanged. An empty DueDate or ReminderDate clears
// the field.
type UpdateOptions struct {
	Text         *string
	Category     *Category
	Priority     *Priority
	DueDate      *string
	ReminderDate *string
}

// Update merges opts into the task with the given id.
func (s *Store) Update(id string, opts UpdateOptions) (Task, error) {
	if err := validateUpdate(&opts); err != nil {
		return Task{}, err
	}

	var updated Task
	err := s.mutate(func(tasks []Task) ([]Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		task := &tasks[i]
		if opts.Text != nil {
			task.Text = *opts.Text
		}
		if opts.Category != nil {
			task.Category = *opts.Category
		}
		if opts.Priority != nil {
			task.Priority = *opts.Priority
		}
		if opts.DueDate != nil {
			task.DueDate = *opts.DueDate
		}
		if opts.ReminderDate != nil {
			task.ReminderDate = *opts.ReminderDate
		}
		updated = *task
		return tasks, nil
	})
	if err != nil {
		return Task{}, err
	}

	s.publish(Change{Kind: ChangeUpdated, ID: id, ReminderChanged: opts.ReminderDate != nil})
	return updated, nil
}

func validateUpdate(opts *UpdateOptions) error {
	if opts.Text != nil {
		text := NormalizeDraft(Draft{Text: *opts.Text}).Text
		if err := ValidateText(text); err != nil {
			return err
		}
		opts.Text = &text
	}
	if opts.Category != nil {
		if err := ValidateCategory(*opts.Category); err != nil {
			return err
		}
	}
	if opts.Priority != nil {
		if err := ValidatePriority(*opts.Priority); err != nil {
			return err
		}
	}
	if opts.DueDate != nil {
		if err := ValidateDueDate(*opts.DueDate); err != nil {
			return err
		}
	}
	if opts.ReminderDate != nil {
		if err := ValidateReminder(*opts.ReminderDate); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) error {
	err := s.mutate(func(tasks []Task) ([]Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return slices.Delete(tasks, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.publish(Change{Kind: ChangeDeleted, ID: id})
	return nil
}

func (s *Store) indexOf(id string) int {
	return indexOf(s.tasks, id)
}

func indexOf(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) publish(changes ...Change) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn == nil {
		return
	}
	for _, c := range changes {
		fn(c)
	}
}

// mutate applies fn to the latest task list and saves the result. The kv
// lock is held from the read to the write, so changes made by other
// processes in the meantime are kept. fn receives a list it may modify in
// place. An error from fn leaves both the store and the kv value unchanged.
// Save failures are logged and the change is kept in memory.
func (s *Store) mutate(fn func(tasks []Task) ([]Task, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []Task
	var fnErr error
	applied := false
	err := s.kv.Update(context.Background(), s.key, func(raw string, ok bool) (string, error) {
		next, fnErr = fn(s.latest(raw, ok))
		if fnErr != nil {
			return "", fnErr
		}
		applied = true
		return encodeTasks(next)
	})
	if fnErr != nil {
		return fnErr
	}
	if err == nil {
		s.tasks = next
		s.unsaved = false
		return nil
	}

	s.logger.Printf("failed to save tasks: %v", err)
	if !applied {
		next, fnErr = fn(slices.Clone(s.tasks))
		if fnErr != nil {
			return fnErr
		}
	}
	s.tasks = next
	s.unsaved = true
	return nil
}

// latest returns a copy of the list a mutation should start from: the
// persisted list when it is readable, otherwise the in-memory one. It must
// be called with s.mu held.
func (s *Store) latest(raw string, ok bool) []Task {
	if s.unsaved || !ok {
		return slices.Clone(s.tasks)
	}
	tasks, _, err := decodeTasks(raw, s.now())
	if err != nil {
		s.logger.Printf("failed to parse tasks, keeping the loaded list: %v", err)
		return slices.Clone(s.tasks)
	}
	return tasks
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Printf("failed to read tasks, using defaults: %v", err)
		s.tasks = slices.Clone(s.seed)
		return
	}
	if !ok {
		s.tasks = slices.Clone(s.seed)
		return
	}

	now := s.now()
	tasks, repaired, err := decodeTasks(raw, now)
	if err != nil {
		s.logger.Printf("failed to parse tasks, using defaults: %v", err)
		s.tasks = slices.Clone(s.seed)
		return
	}
	s.tasks = tasks
	if repaired {
		s.saveRepaired(ctx, now)
	}
}

var errNothingToRepair = errors.New("nothing to repair")

// saveRepaired writes back records that were loaded without a creation
// time, so later loads see the same value. It must be called with s.mu held.
func (s *Store) saveRepaired(ctx context.Context, now time.Time) {
	err := s.kv.Update(ctx, s.key, func(raw string, ok bool) (string, error) {
		if !ok {
			return "", errNothingToRepair
		}
		tasks, repaired, err := decodeTasks(raw, now)
		if err != nil {
			return "", err
		}
		if !repaired {
			return "", errNothingToRepair
		}
		s.tasks = tasks
		return encodeTasks(tasks)
	})
	if err != nil && !errors.Is(err, errNothingToRepair) {
		s.logger.Printf("failed to save repaired tasks: %v", err)
	}
}

func encodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// storedTask mirrors Task with an optional createdAt so that records
// written without one can be repaired.
type storedTask struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Completed    bool       `json:"completed"`
	Category     Category   `json:"category"`
	Priority     Priority   `json:"priority"`
	CreatedAt    *time.Time `json:"createdAt"`
	DueDate      string     `json:"dueDate,omitempty"`
	ReminderDate string     `json:"reminderDate,omitempty"`
}

// decodeTasks parses a stored task list. Any record that does not match the
// task shape makes the whole value invalid. Records without a creation time
// get now, and repaired reports whether that happened.
func decodeTasks(raw string, now time.Time) (tasks []Task, repaired bool, err error) {
	var stored []storedTask
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false, err
	}

	tasks = make([]Task, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	var errs []error
	for i, st := range stored {
		t := Task{
			ID:           st.ID,
			Text:         st.Text,
			Completed:    st.Completed,
			Category:     st.Category,
			Priority:     st.Priority,
			DueDate:      st.DueDate,
			ReminderDate: st.ReminderDate,
		}
		if st.CreatedAt != nil && !st.CreatedAt.IsZero() {
			t.CreatedAt = *st.CreatedAt
		} else {
			t.CreatedAt = now
			repaired = true
		}
		if err := ValidateTask(t); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, t.ID))
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, false, err
	}
	return tasks, repaired, nil
}
