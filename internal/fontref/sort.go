package fontref

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Inventory output is ordered with a locale-aware, case-insensitive
// collation so "arial" sorts next to "Arial" rather than after "Zapfino".
// A collate.Collator is not safe for concurrent use, hence the mutex.
var (
	collMu sync.Mutex
	coll   = collate.New(language.Und, collate.IgnoreCase)
)

// CompareStrings is a collated, case-insensitive string comparison
// returning -1, 0 or 1.
func CompareStrings(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return coll.CompareString(a, b)
}

// Compare orders two refs by family, then style.
func Compare(a, b FontRef) int {
	if c := CompareStrings(a.Family, b.Family); c != 0 {
		return c
	}
	return CompareStrings(a.Style, b.Style)
}

// Sort orders refs in place by (family, style).
func Sort(refs []FontRef) {
	sort.Slice(refs, func(i, j int) bool { return Compare(refs[i], refs[j]) < 0 })
}

// SortStrings orders a string slice in place with the same collation.
func SortStrings(vals []string) {
	sort.Slice(vals, func(i, j int) bool { return CompareStrings(vals[i], vals[j]) < 0 })
}
