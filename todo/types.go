// Package todo implements the BeeSmart task list.
//
// Tasks live in memory in collection order (most recent first) and are
// mirrored in full to a single key of a kv.Store after every change.
//
// The public API mirrors the CLI commands:
//   - Add, AddMany, Toggle, Update, Delete for the task lifecycle
//   - Tasks, Get, Resolve for querying
//   - Project for the filtered and sorted view
package todo

import (
	"strings"

	internalstrings "github.com/beemnet-bee/BeeSmartToDo/internal/strings"
)

// Category groups tasks by area of life.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
	CategoryOther    Category = "Other"
)

// DefaultCategory is used when no category is given.
const DefaultCategory = CategoryPersonal

// ValidCategories returns all valid category values in display order.
func ValidCategories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryOther}
}

// IsValid returns true if the category is a known valid value.
func (c Category) IsValid() bool {
	for _, valid := range ValidCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(value string) (Category, bool) {
	value = strings.TrimSpace(value)
	for _, c := range ValidCategories() {
		if strings.EqualFold(value, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// DefaultPriority is used when no priority is given.
const DefaultPriority = PriorityMedium

// ValidPriorities returns all valid priority values, most urgent first.
func ValidPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// ParsePriority matches a priority name case-insensitively.
func ParsePriority(value string) (Priority, bool) {
	value = strings.TrimSpace(value)
	for _, p := range ValidPriorities() {
		if strings.EqualFold(value, string(p)) {
			return p, true
		}
	}
	return "", false
}

// PriorityRank returns the sort rank for a priority. Higher is more urgent.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// FilterAll matches every category or priority.
const FilterAll = "All"

// CategoryFilter is either FilterAll or a Category.
type CategoryFilter string

// Matches reports whether c passes the filter.
func (f CategoryFilter) Matches(c Category) bool {
	return f == "" || f == FilterAll || Category(f) == c
}

// ParseCategoryFilter accepts "all" or a category name, case-insensitively.
func ParseCategoryFilter(value string) (CategoryFilter, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, FilterAll) {
		return FilterAll, true
	}
	c, ok := ParseCategory(value)
	return CategoryFilter(c), ok
}

// PriorityFilter is either FilterAll or a Priority.
type PriorityFilter string

// Matches reports whether p passes the filter.
func (f PriorityFilter) Matches(p Priority) bool {
	return f == "" || f == FilterAll || Priority(f) == p
}

// ParsePriorityFilter accepts "all" or a priority name, case-insensitively.
func ParsePriorityFilter(value string) (PriorityFilter, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, FilterAll) {
		return FilterAll, true
	}
	p, ok := ParsePriority(value)
	return PriorityFilter(p), ok
}

// SortOrder selects the ordering within each completion partition.
type SortOrder string

const (
	// SortNewest orders by creation time, newest first (default).
	SortNewest SortOrder = "newest"

	// SortOldest orders by creation time, oldest first.
	SortOldest SortOrder = "oldest"

	// SortDueDateAsc orders by due date, earliest first. Tasks without a due
	// date come last.
	SortDueDateAsc SortOrder = "due_date_asc"

	// SortDueDateDesc orders by due date, latest first. Tasks without a due
	// date still come last.
	SortDueDateDesc SortOrder = "due_date_desc"

	// SortPriorityDesc orders High, Medium, Low.
	SortPriorityDesc SortOrder = "priority_desc"

	// SortPriorityAsc orders Low, Medium, High.
	SortPriorityAsc SortOrder = "priority_asc"
)

// ValidSortOrders returns all valid sort orders.
func ValidSortOrders() []SortOrder {
	return []SortOrder{SortNewest, SortOldest, SortDueDateAsc, SortDueDateDesc, SortPriorityDesc, SortPriorityAsc}
}

// IsValid returns true if the sort order is a known valid value.
func (s SortOrder) IsValid() bool {
	for _, valid := range ValidSortOrders() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseSortOrder accepts a sort order name case-insensitively, with either
// "-" or "_" as separator. Empty input selects SortNewest.
func ParseSortOrder(value string) (SortOrder, bool) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return SortNewest, true
	}
	order := SortOrder(normalized)
	return order, order.IsValid()
}
