package listflags

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

func TestAddViewFlags(t *testing.T) {
	var flags ViewFlags
	cmd := &cobra.Command{Use: "list"}
	AddViewFlags(cmd, &flags)

	if err := cmd.ParseFlags([]string{"-c", "work", "--priority=low", "-s", "due-date-desc", "--clear"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	want := ViewFlags{Category: "work", Priority: "low", Sort: "due-date-desc", Clear: true}
	if flags != want {
		t.Fatalf("expected %+v, got %+v", want, flags)
	}
}

func TestViewFlags_View(t *testing.T) {
	base := todo.View{Category: todo.CategoryFilter(todo.CategoryWork), Priority: todo.FilterAll, Sort: todo.SortOldest}

	view, err := ViewFlags{}.View(base)
	if err != nil || view != base {
		t.Fatalf("expected base view unchanged, got %+v %v", view, err)
	}

	view, err = ViewFlags{Priority: "high"}.View(base)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Category != base.Category || view.Priority != todo.PriorityFilter(todo.PriorityHigh) || view.Sort != todo.SortOldest {
		t.Fatalf("expected priority override only, got %+v", view)
	}

	view, err = ViewFlags{Clear: true}.View(base)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Category != todo.FilterAll || view.Priority != todo.FilterAll || view.Sort != todo.SortNewest {
		t.Fatalf("expected cleared view, got %+v", view)
	}
}

func TestViewFlags_ViewErrors(t *testing.T) {
	if _, err := (ViewFlags{Category: "errands"}).View(todo.View{}); !errors.Is(err, todo.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := (ViewFlags{Priority: "urgent"}).View(todo.View{}); !errors.Is(err, todo.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if _, err := (ViewFlags{Sort: "random"}).View(todo.View{}); err == nil {
		t.Fatal("expected error for unknown sort")
	}
}
