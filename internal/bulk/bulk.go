// Package bulk extracts candidate values from free-form pasted text,
// merges them into existing canonical lists, and performs bulk deletion.
// It never talks to storage; callers apply its results to the model.
package bulk

import (
	"fmt"
	"regexp"
)

// Field families with a fixed extraction pattern.
const (
	FamilyAPIKey = "apikey"
	FamilyProxy  = "proxy"
)

var families = map[string]*regexp.Regexp{
	// Vendor key shape: "sk-" prefix followed by at least 16 key characters.
	FamilyAPIKey: regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
	// Proxy URI shape, terminated by whitespace or a separator.
	FamilyProxy: regexp.MustCompile(`(?:https?|socks5)://[^\s,;"']+`),
}

type UnknownFamilyError struct {
	Family string
}

func (e UnknownFamilyError) Error() string {
	return fmt.Sprintf("unknown field family: %s", e.Family)
}

// ExtractResult distinguishes the two vacuous outcomes a user can hit:
// pasting nothing at all, and pasting text the pattern finds nothing in.
// They get different messages, so both are explicit here.
type ExtractResult struct {
	Items      []string
	EmptyInput bool
	NoMatches  bool
}

// Extract applies a field family's fixed pattern to pasted text and returns
// all non-overlapping matches in order of appearance. Matches are not
// deduplicated here; MergeDedup owns that.
func Extract(raw, family string) (ExtractResult, error) {
	re, ok := families[family]
	if !ok {
		return ExtractResult{}, UnknownFamilyError{Family: family}
	}
	return ExtractPattern(raw, re), nil
}

// ExtractPattern is Extract with an explicit pattern.
func ExtractPattern(raw string, re *regexp.Regexp) ExtractResult {
	if raw == "" {
		return ExtractResult{EmptyInput: true}
	}
	items := re.FindAllString(raw, -1)
	if len(items) == 0 {
		return ExtractResult{NoMatches: true}
	}
	return ExtractResult{Items: items}
}

// MergeDedup unions existing and extracted values, keeping the first seen
// occurrence of each value and its position. First-seen insertion order is
// the contract: merging is deterministic and idempotent.
func MergeDedup(existing, extracted []string) []string {
	seen := make(map[string]bool, len(existing)+len(extracted))
	out := make([]string, 0, len(existing)+len(extracted))
	for _, lists := range [][]string{existing, extracted} {
		for _, v := range lists {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// DeleteResult reports a bulk deletion. Deleted counts entries actually
// removed, which can be less than the number of delete candidates when some
// of them were not present.
type DeleteResult struct {
	Remaining []string
	Deleted   int
}

// BulkDelete removes exact literal matches of toDelete from existing; no
// pattern re-matching happens against stored values. Every occurrence of a
// matched value is removed and counted.
func BulkDelete(existing, toDelete []string) DeleteResult {
	drop := make(map[string]bool, len(toDelete))
	for _, v := range toDelete {
		drop[v] = true
	}
	res := DeleteResult{Remaining: make([]string, 0, len(existing))}
	for _, v := range existing {
		if drop[v] {
			res.Deleted++
			continue
		}
		res.Remaining = append(res.Remaining, v)
	}
	return res
}
