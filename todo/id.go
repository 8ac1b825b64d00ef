package todo

import (
	"fmt"

	"github.com/beemnet-bee/BeeSmartToDo/internal/ids"
)

// IDIndex indexes task IDs for prefix matching and display.
type IDIndex struct {
	ids []string
}

// NewIDIndex builds an IDIndex from a slice of tasks.
func NewIDIndex(tasks []Task) IDIndex {
	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	return IDIndex{ids: ids.NormalizeUniqueIDs(taskIDs)}
}

// Resolve returns the full task ID for a prefix.
func (index IDIndex) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrTaskNotFound
	}

	match, found, ambiguous := ids.MatchPrefixNormalized(index.ids, prefix)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, prefix)
	}
	if ambiguous {
		return "", fmt.Errorf("%w: %s", ErrAmbiguousTaskIDPrefix, prefix)
	}

	return match, nil
}

// PrefixLengths returns the shortest unique prefix length for each ID.
func (index IDIndex) PrefixLengths() map[string]int {
	return ids.UniquePrefixLengthsNormalized(index.ids)
}
