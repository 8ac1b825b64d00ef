package todo

import "time"

const (
	// DateLayout is the format of Task.DueDate.
	DateLayout = "2006-01-02"

	// ReminderLayout is the format of Task.ReminderDate, a local wall time.
	ReminderLayout = "2006-01-02T15:04"
)

// Task is a single to-do item.
type Task struct {
	// ID is the unique identifier. Assigned on creation, never changed.
	ID string `json:"id"`

	// Text is the user-visible description.
	Text string `json:"text"`

	// Completed is true once the task has been checked off.
	Completed bool `json:"completed"`

	Category Category `json:"category"`
	Priority Priority `json:"priority"`

	// CreatedAt is when the task was added.
	CreatedAt time.Time `json:"createdAt"`

	// DueDate is an optional calendar date in DateLayout.
	DueDate string `json:"dueDate,omitempty"`

	// ReminderDate is an optional local date-time in ReminderLayout.
	ReminderDate string `json:"reminderDate,omitempty"`
}

// Due returns the due date at midnight in loc.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	return parseIn(DateLayout, t.DueDate, loc)
}

// Reminder returns the reminder time in loc.
func (t Task) Reminder(loc *time.Location) (time.Time, bool) {
	return parseIn(ReminderLayout, t.ReminderDate, loc)
}

// IsOverdue reports whether t is incomplete and due strictly before the
// calendar day of now.
func IsOverdue(t Task, now time.Time) bool {
	if t.Completed || t.DueDate == "" {
		return false
	}
	return t.DueDate < now.Format(DateLayout)
}

// Draft is a task that has not been added yet.
type Draft struct {
	Text         string   `json:"text"`
	Category     Category `json:"category"`
	Priority     Priority `json:"priority"`
	DueDate      string   `json:"dueDate,omitempty"`
	ReminderDate string   `json:"reminderDate,omitempty"`
}

func parseIn(layout, value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
