package remind

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// DefaultInterval is how often Run checks for due reminders.
const DefaultInterval = 15 * time.Second

// DefaultIcon is the freedesktop icon name sent with reminders.
const DefaultIcon = "appointment-soon"

// TaskSource provides the current task list.
type TaskSource interface {
	Tasks() []todo.Task
}

type reloader interface {
	Reload(ctx context.Context)
}

// Options configures a Scheduler.
type Options struct {
	Tasks    TaskSource
	Notifier Notifier

	// Fired records fired reminders. If nil, an in-memory set is used.
	Fired *FiredSet

	// Interval between ticks. Zero uses DefaultInterval.
	Interval time.Duration

	// Reload re-reads the task source and fired set before every tick, so
	// changes made by other processes are seen.
	Reload bool

	Now    func() time.Time
	Logger *log.Logger
}

// Scheduler fires reminder notifications.
type Scheduler struct {
	tasks    TaskSource
	notifier Notifier
	fired    *FiredSet
	interval time.Duration
	reload   bool
	now      func() time.Time
	logger   *log.Logger
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "remind: ", log.LstdFlags)
	}
	if opts.Fired == nil {
		opts.Fired = LoadFiredSet(context.Background(), nil, opts.Logger)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		tasks:    opts.Tasks,
		notifier: opts.Notifier,
		fired:    opts.Fired,
		interval: opts.Interval,
		reload:   opts.Reload,
		now:      opts.Now,
		logger:   opts.Logger,
	}
}

// Interval returns the time between ticks.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks immediately and then once per interval until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick notifies every due reminder that has not fired yet and returns the
// number of notifications sent. When permission is not granted nothing is
// sent or recorded, so the reminders are retried on the next tick.
func (s *Scheduler) Tick(ctx context.Context) int {
	if s.reload {
		if r, ok := s.tasks.(reloader); ok {
			r.Reload(ctx)
		}
		s.fired.Reload(ctx)
	}

	tasks := s.tasks.Tasks()
	s.fired.Prune(ctx, tasks)

	now := s.now()
	var permission Permission
	sent := 0
	for _, t := range Due(tasks, now) {
		if s.fired.Has(t) {
			continue
		}
		if permission == "" {
			permission = s.notifier.Permission()
		}
		if permission != PermissionGranted {
			return sent
		}

		err := s.notifier.Notify(ctx, Notification{
			Title: ReminderTitle,
			Body:  t.Text,
			Icon:  DefaultIcon,
		})
		if err != nil {
			s.logger.Printf("failed to notify %s: %v", t.ID, err)
			continue
		}
		s.fired.Mark(ctx, t)
		sent++
	}
	return sent
}

// HandleChange clears fired state when a task is deleted or its reminder is
// edited. It is meant to be registered with todo.Store.SetOnChange.
func (s *Scheduler) HandleChange(c todo.Change) {
	s.fired.HandleChange(c)
}

// Due returns the incomplete tasks whose reminder is at or before now, in
// collection order.
func Due(tasks []todo.Task, now time.Time) []todo.Task {
	var due []todo.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		at, ok := t.Reminder(now.Location())
		if !ok || at.After(now) {
			continue
		}
		due = append(due, t)
	}
	return due
}
