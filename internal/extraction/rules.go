// Package extraction derives structured candidate and job profiles from plain
// text using ordered lists of named heuristic rules.
package extraction

import "strings"

// Rule is one named heuristic. Rules run in list order; their results are
// merged with first-seen deduplication.
type Rule struct {
	Name  string
	Apply func(text string) []string
	// SkipCovered drops results already contained in an earlier result.
	SkipCovered bool
}

// RunRules applies rules in order and returns the merged, deduplicated output.
func RunRules(rules []Rule, text string) []string {
	var acc dedup
	for _, r := range rules {
		for _, s := range r.Apply(text) {
			if r.SkipCovered && acc.covered(s) {
				continue
			}
			acc.add(s)
		}
	}
	return acc.items
}

// dedup keeps exact-string first-seen order.
type dedup struct {
	items []string
	seen  map[string]struct{}
}

func (d *dedup) add(s string) bool {
	if s == "" {
		return false
	}
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}
	if _, ok := d.seen[s]; ok {
		return false
	}
	d.seen[s] = struct{}{}
	d.items = append(d.items, s)
	return true
}

// covered reports whether s already appears inside a collected item.
func (d *dedup) covered(s string) bool {
	for _, it := range d.items {
		if strings.Contains(it, s) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string { return strings.Join(strings.Fields(s), " ") }
