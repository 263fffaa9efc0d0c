// Package intersect computes the ids common to a sequence of name->id
// mappings, one per upstream parent entity (e.g. the available receiving
// institutions of each selected sending institution).
package intersect

// Intersect returns a name->id mapping containing exactly the ids present in
// every input mapping, each under one representative name.
//
// Representative name: the name from the first mapping in the sequence that
// contains the id. If several names map to the same id within that mapping,
// the lexicographically smallest wins, keeping the result independent of map
// iteration order.
//
// A failed upstream fetch must be passed as an empty mapping, never skipped:
// one empty parent legitimately forces the whole intersection to empty.
func Intersect(mappings []map[string]string) map[string]string {
	if len(mappings) == 0 {
		return map[string]string{}
	}
	if len(mappings) == 1 {
		out := make(map[string]string, len(mappings[0]))
		for name, id := range mappings[0] {
			out[name] = id
		}
		return out
	}

	// One pass per mapping: count how many mappings contain each id and
	// remember the name from the first mapping that did. O(total entries).
	seenIn := make(map[string]int)   // id -> number of mappings containing it
	firstIn := make(map[string]int)  // id -> index of first mapping containing it
	nameFor := make(map[string]string)
	for i, mapping := range mappings {
		counted := make(map[string]bool, len(mapping))
		for name, id := range mapping {
			if !counted[id] {
				counted[id] = true
				seenIn[id]++
			}
			if idx, ok := firstIn[id]; !ok {
				firstIn[id] = i
				nameFor[id] = name
			} else if idx == i && name < nameFor[id] {
				nameFor[id] = name
			}
		}
	}

	out := make(map[string]string)
	for id, count := range seenIn {
		if count == len(mappings) {
			out[nameFor[id]] = id
		}
	}
	return out
}
