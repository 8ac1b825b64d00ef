package todo

import (
	"cmp"
	"slices"
)

// View selects which tasks are shown and in what order.
type View struct {
	Category CategoryFilter
	Priority PriorityFilter
	Sort     SortOrder
}

// Project filters tasks by v, places incomplete tasks before completed ones
// and orders each group by v.Sort. Ties keep their order in tasks. The input
// is not modified.
func Project(tasks []Task, v View) []Task {
	var open, done []Task
	for _, t := range tasks {
		if !v.Category.Matches(t.Category) || !v.Priority.Matches(t.Priority) {
			continue
		}
		if t.Completed {
			done = append(done, t)
		} else {
			open = append(open, t)
		}
	}

	compare := comparator(v.Sort)
	slices.SortStableFunc(open, compare)
	slices.SortStableFunc(done, compare)

	projected := make([]Task, 0, len(open)+len(done))
	projected = append(projected, open...)
	return append(projected, done...)
}

// ProjectIDs returns the ids of Project(tasks, v).
func ProjectIDs(tasks []Task, v View) []string {
	projected := Project(tasks, v)
	out := make([]string, 0, len(projected))
	for _, t := range projected {
		out = append(out, t.ID)
	}
	return out
}

func comparator(order SortOrder) func(a, b Task) int {
	switch order {
	case SortOldest:
		return func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortDueDateAsc:
		return func(a, b Task) int { return compareDue(a, b, false) }
	case SortDueDateDesc:
		return func(a, b Task) int { return compareDue(a, b, true) }
	case SortPriorityDesc:
		return func(a, b Task) int { return cmp.Compare(PriorityRank(b.Priority), PriorityRank(a.Priority)) }
	case SortPriorityAsc:
		return func(a, b Task) int { return cmp.Compare(PriorityRank(a.Priority), PriorityRank(b.Priority)) }
	default:
		return func(a, b Task) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// compareDue orders by due date. Tasks without one sort last in both
// directions.
func compareDue(a, b Task, desc bool) int {
	switch {
	case a.DueDate == "" && b.DueDate == "":
		return 0
	case a.DueDate == "":
		return 1
	case b.DueDate == "":
		return -1
	case desc:
		return cmp.Compare(b.DueDate, a.DueDate)
	default:
		return cmp.Compare(a.DueDate, b.DueDate)
	}
}
