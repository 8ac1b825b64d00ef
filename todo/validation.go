package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/internal/validation"
)

var (
	// ErrEmptyText is returned when task text is empty after trimming.
	ErrEmptyText = errors.New("task text cannot be empty")

	// ErrInvalidCategory is returned when an unknown category is provided.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidPriority is returned when an unknown priority is provided.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidDueDate is returned when a due date is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")

	// ErrInvalidReminder is returned when a reminder is not YYYY-MM-DDTHH:MM.
	ErrInvalidReminder = errors.New("reminder must be YYYY-MM-DDTHH:MM")

	// ErrMissingID is returned when a stored task has no id.
	ErrMissingID = errors.New("task id cannot be empty")

	// ErrDuplicateID is returned when two stored tasks share an id.
	ErrDuplicateID = errors.New("duplicate task id")

	// ErrTaskNotFound is returned when a task with the given ID doesn't exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousTaskIDPrefix is returned when an ID prefix matches multiple tasks.
	ErrAmbiguousTaskIDPrefix = errors.New("ambiguous task ID prefix")
)

// ValidateText checks that text is not blank.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateCategory checks that c is a known category.
func ValidateCategory(c Category) error {
	if !c.IsValid() {
		return validation.FormatInvalidValueError(ErrInvalidCategory, c, ValidCategories())
	}
	return nil
}

// ValidatePriority checks that p is a known priority.
func ValidatePriority(p Priority) error {
	if !p.IsValid() {
		return validation.FormatInvalidValueError(ErrInvalidPriority, p, ValidPriorities())
	}
	return nil
}

// ValidateDueDate checks an optional due date.
func ValidateDueDate(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDueDate, value)
	}
	return nil
}

// ValidateReminder checks an optional reminder date-time.
func ValidateReminder(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(ReminderLayout, value); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidReminder, value)
	}
	return nil
}

// NormalizeDraft trims the text and fills in the default category and
// priority.
func NormalizeDraft(d Draft) Draft {
	d.Text = strings.TrimSpace(d.Text)
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Priority == "" {
		d.Priority = DefaultPriority
	}
	d.DueDate = strings.TrimSpace(d.DueDate)
	d.ReminderDate = strings.TrimSpace(d.ReminderDate)
	return d
}

// ValidateDraft checks a normalized draft.
func ValidateDraft(d Draft) error {
	if err := ValidateText(d.Text); err != nil {
		return err
	}
	if err := ValidateCategory(d.Category); err != nil {
		return err
	}
	if err := ValidatePriority(d.Priority); err != nil {
		return err
	}
	if err := ValidateDueDate(d.DueDate); err != nil {
		return err
	}
	return ValidateReminder(d.ReminderDate)
}

// ValidateTask checks a stored task, including the fields a draft lacks.
func ValidateTask(t Task) error {
	if t.ID == "" {
		return ErrMissingID
	}
	return ValidateDraft(Draft{
		Text:         t.Text,
		Category:     t.Category,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		ReminderDate: t.ReminderDate,
	})
}
