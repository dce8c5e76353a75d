package record

import "slices"

// Dedupe returns ids with duplicates removed, keeping first occurrences in order.
// Empty ids are dropped. The result is never nil.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Difference returns the ids in a that are not in b, in a's order.
func Difference(a, b []string) []string {
	out := make([]string, 0)
	for _, id := range a {
		if !slices.Contains(b, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Union returns a followed by the ids of b not already in a, without duplicates.
func Union(a, b []string) []string {
	return Dedupe(append(slices.Clone(a), b...))
}

// Without returns ids with every occurrence of id removed. The result is never nil.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// SameSet reports whether a and b contain the same ids, ignoring order and duplicates.
func SameSet(a, b []string) bool {
	return len(Difference(a, b)) == 0 && len(Difference(b, a)) == 0
}
