// Package listflags registers the task view flags shared by listing commands.
package listflags

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/validation"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// ViewFlags holds the values of the view flags.
type ViewFlags struct {
	Category string
	Priority string
	Sort     string
	Clear    bool
}

// AddViewFlags adds --category, --priority, --sort and --clear to cmd.
func AddViewFlags(cmd *cobra.Command, target *ViewFlags) {
	cmd.Flags().StringVarP(&target.Category, "category", "c", "", "Filter by category ("+todo.FilterAll+", "+validation.FormatValidValues(todo.ValidCategories())+")")
	cmd.Flags().StringVarP(&target.Priority, "priority", "p", "", "Filter by priority ("+todo.FilterAll+", "+validation.FormatValidValues(todo.ValidPriorities())+")")
	cmd.Flags().StringVarP(&target.Sort, "sort", "s", "", "Sort order ("+validation.FormatValidValues(todo.ValidSortOrders())+")")
	cmd.Flags().BoolVar(&target.Clear, "clear", false, "Ignore configured view defaults and show every category and priority")
}

// View applies the flags on top of base. Unset flags keep the base value;
// --clear resets base to all categories, all priorities and newest first.
func (f ViewFlags) View(base todo.View) (todo.View, error) {
	view := base
	if f.Clear {
		view = todo.View{
			Category: todo.FilterAll,
			Priority: todo.FilterAll,
			Sort:     todo.SortNewest,
		}
	}
	if f.Category != "" {
		category, ok := todo.ParseCategoryFilter(f.Category)
		if !ok {
			return todo.View{}, validation.FormatInvalidValueError(todo.ErrInvalidCategory, f.Category, categoryFilterValues())
		}
		view.Category = category
	}
	if f.Priority != "" {
		priority, ok := todo.ParsePriorityFilter(f.Priority)
		if !ok {
			return todo.View{}, validation.FormatInvalidValueError(todo.ErrInvalidPriority, f.Priority, priorityFilterValues())
		}
		view.Priority = priority
	}
	if f.Sort != "" {
		sort, ok := todo.ParseSortOrder(f.Sort)
		if !ok {
			return todo.View{}, fmt.Errorf("invalid sort order %q (valid: %s)", f.Sort, validation.FormatValidValues(todo.ValidSortOrders()))
		}
		view.Sort = sort
	}
	return view, nil
}

func categoryFilterValues() []string {
	values := []string{todo.FilterAll}
	for _, c := range todo.ValidCategories() {
		values = append(values, string(c))
	}
	return values
}

func priorityFilterValues() []string {
	values := []string{todo.FilterAll}
	for _, p := range todo.ValidPriorities() {
		values = append(values, string(p))
	}
	return values
}
