package ids

import "strings"

// NormalizeUniqueIDs lowercases ids and drops empties and duplicates,
// preserving first-seen order.
func NormalizeUniqueIDs(ids []string) []string {
	uniqueIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == "" || seen[idLower] {
			continue
		}
		seen[idLower] = true
		uniqueIDs = append(uniqueIDs, idLower)
	}
	return uniqueIDs
}

// UniquePrefixLengths returns the shortest unique prefix length for each ID.
func UniquePrefixLengths(ids []string) map[string]int {
	return UniquePrefixLengthsNormalized(NormalizeUniqueIDs(ids))
}

// UniquePrefixLengthsNormalized is UniquePrefixLengths for ids that have
// already been through NormalizeUniqueIDs.
func UniquePrefixLengthsNormalized(ids []string) map[string]int {
	lengths := make(map[string]int, len(ids))
	for _, id := range ids {
		lengths[id] = uniquePrefixLength(id, ids)
	}
	return lengths
}

// MatchPrefixNormalized finds the id that starts with prefix. An exact match
// always wins; otherwise more than one candidate is reported as ambiguous.
func MatchPrefixNormalized(ids []string, prefix string) (match string, found bool, ambiguous bool) {
	prefix = strings.ToLower(prefix)
	for _, id := range ids {
		if id == prefix {
			return id, true, false
		}
	}
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if found {
			return "", true, true
		}
		match = id
		found = true
	}
	return match, found, false
}

func uniquePrefixLength(id string, ids []string) int {
	for length := 1; length <= len(id); length++ {
		prefix := id[:length]
		unique := true
		for _, other := range ids {
			if other == id {
				continue
			}
			if strings.HasPrefix(other, prefix) {
				unique = false
				break
			}
		}
		if unique {
			return length
		}
	}

	return len(id)
}
