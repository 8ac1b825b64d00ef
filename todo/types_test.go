package todo

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	for _, input := range []string{"work", "WORK", " Work "} {
		if c, ok := ParseCategory(input); !ok || c != CategoryWork {
			t.Errorf("ParseCategory(%q) = %q, %v", input, c, ok)
		}
	}
	if _, ok := ParseCategory("errands"); ok {
		t.Error("expected unknown category to be rejected")
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority("high"); !ok || p != PriorityHigh {
		t.Errorf("ParsePriority(high) = %q, %v", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("expected unknown priority to be rejected")
	}
}

func TestParseFilters(t *testing.T) {
	if f, ok := ParseCategoryFilter("all"); !ok || f != FilterAll {
		t.Errorf("expected all, got %q, %v", f, ok)
	}
	if f, ok := ParseCategoryFilter("shopping"); !ok || f != CategoryFilter(CategoryShopping) {
		t.Errorf("expected Shopping, got %q, %v", f, ok)
	}
	if _, ok := ParseCategoryFilter("nope"); ok {
		t.Error("expected unknown category filter to be rejected")
	}
	if f, ok := ParsePriorityFilter(""); !ok || f != FilterAll {
		t.Errorf("expected empty priority filter to mean all, got %q", f)
	}
	if f, ok := ParsePriorityFilter("LOW"); !ok || f != PriorityFilter(PriorityLow) {
		t.Errorf("expected Low, got %q, %v", f, ok)
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"":              SortNewest,
		"newest":        SortNewest,
		"Oldest":        SortOldest,
		"due-date-asc":  SortDueDateAsc,
		"due_date_desc": SortDueDateDesc,
		"priority-desc": SortPriorityDesc,
		"PRIORITY_ASC":  SortPriorityAsc,
	}
	for input, want := range tests {
		if got, ok := ParseSortOrder(input); !ok || got != want {
			t.Errorf("ParseSortOrder(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseSortOrder("alphabetical"); ok {
		t.Error("expected unknown sort order to be rejected")
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityRank(PriorityHigh) > PriorityRank(PriorityMedium) && PriorityRank(PriorityMedium) > PriorityRank(PriorityLow)) {
		t.Fatal("expected High > Medium > Low")
	}
}

func TestValidateTask(t *testing.T) {
	valid := Task{ID: "a", Text: "x", Category: CategoryOther, Priority: PriorityLow}
	if err := ValidateTask(valid); err != nil {
		t.Fatalf("expected valid task, got %v", err)
	}

	missingID := valid
	missingID.ID = ""
	if err := ValidateTask(missingID); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}

	badDate := valid
	badDate.DueDate = "2024-13-01"
	if err := ValidateTask(badDate); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestTaskReminder(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	task := Task{ReminderDate: "2024-05-01T10:00", DueDate: "2024-05-01"}

	reminder, ok := task.Reminder(loc)
	if !ok {
		t.Fatal("expected reminder to parse")
	}
	if want := time.Date(2024, 5, 1, 10, 0, 0, 0, loc); !reminder.Equal(want) {
		t.Fatalf("expected %v, got %v", want, reminder)
	}

	due, ok := task.Due(loc)
	if !ok || !due.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected due %v (%v)", due, ok)
	}

	if _, ok := (Task{}).Reminder(loc); ok {
		t.Fatal("expected empty reminder to report false")
	}
}
