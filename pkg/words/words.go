// Package words implements the word-set merge primitive shared by every
// source extractor and target writer. A word list never contains duplicates
// and is kept sorted with a locale-aware, case-insensitive collation.
package words

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator returns a collator that ignores case and diacritics for
// ordering. Collators are not safe for concurrent use, so each sort gets
// its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Loose)
}

// Clean trims candidates and drops blank and repeated entries, preserving
// first-seen order.
func Clean(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		w := strings.TrimSpace(c)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Merge returns the deduplicated union of existing and candidates, sorted
// case-insensitively, along with the number of candidates that were actually
// new. A candidate is new iff no exact-string match exists in existing;
// candidates duplicated within themselves count once.
//
// Merge has no side effects. When added is zero the existing slice is
// returned unchanged so callers can cheaply skip the write.
func Merge(existing []string, candidates []string) (merged []string, added int) {
	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		seen[w] = true
	}

	var fresh []string
	for _, c := range candidates {
		w := strings.TrimSpace(c)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		fresh = append(fresh, w)
	}

	if len(fresh) == 0 {
		return existing, 0
	}

	merged = make([]string, 0, len(existing)+len(fresh))
	merged = append(merged, existing...)
	merged = append(merged, fresh...)
	Sort(merged)
	return merged, len(fresh)
}

// Sort orders a word list in place using the collation rule: case and
// accents do not affect ordering, ties broken by the original string.
func Sort(list []string) {
	col := newCollator()
	sort.SliceStable(list, func(i, j int) bool {
		if c := col.CompareString(list[i], list[j]); c != 0 {
			return c < 0
		}
		return list[i] < list[j]
	})
}
