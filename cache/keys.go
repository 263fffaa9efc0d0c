package cache

import (
	"sort"
	"strings"
)

// NotCacheable is the sentinel returned by BuildKey when a required id part
// is missing. Callers must treat it as "do not attempt to cache".
const NotCacheable = ""

const (
	keySeparator  = ":"
	partSeparator = ","
)

// Unordered canonicalizes a set of ids whose input order carries no meaning
// (e.g. multiple sending-institution ids): sorted lexicographically and joined,
// so any permutation of the same ids produces the same key part. Returns
// NotCacheable if the set is empty or any id is empty.
func Unordered(ids ...string) string {
	if len(ids) == 0 {
		return NotCacheable
	}
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	for _, id := range sorted {
		if id == "" {
			return NotCacheable
		}
	}
	return strings.Join(sorted, partSeparator)
}

// BuildKey derives a deterministic cache key from a resource tag and its
// identifying parts, in order. Parts without inherent sequence must be
// canonicalized with Unordered first. If any part is empty the key is
// NotCacheable: a partial key must never be built silently.
func BuildKey(resourceTag string, parts ...string) string {
	if resourceTag == "" {
		return NotCacheable
	}
	for _, part := range parts {
		if part == "" {
			return NotCacheable
		}
	}
	return resourceTag + keySeparator + strings.Join(parts, keySeparator)
}
