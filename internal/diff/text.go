package diff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffText computes text edits between two strings at the given granularity
func DiffText(before, after string, g Granularity) []TextEdit {
	if before == after {
		if before == "" {
			return nil
		}
		return []TextEdit{{Op: OpEqual, Before: before, After: after}}
	}

	a := tokenize(before, g)
	b := tokenize(after, g)
	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)

	var edits []TextEdit
	for _, oc := range matcher.GetOpCodes() {
		edit := TextEdit{
			Op:     opFromTag(oc.Tag),
			Before: strings.Join(a[oc.I1:oc.I2], ""),
			After:  strings.Join(b[oc.J1:oc.J2], ""),
		}
		edits = append(edits, edit)
	}
	return edits
}

// Similarity returns a 0..1 ratio of how alike two texts are on the
// character level. Two empty texts are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	matcher := difflib.NewMatcherWithJunk(tokenize(a, GranularityChar), tokenize(b, GranularityChar), false, nil)
	return matcher.Ratio()
}

// editSizes returns inserted and removed rune counts of an edit script
func editSizes(edits []TextEdit) (added, removed int) {
	for _, e := range edits {
		if e.Op == OpEqual {
			continue
		}
		added += utf8.RuneCountInString(e.After)
		removed += utf8.RuneCountInString(e.Before)
	}
	return added, removed
}

func opFromTag(tag byte) EditOp {
	switch tag {
	case 'i':
		return OpInsert
	case 'd':
		return OpDelete
	case 'r':
		return OpReplace
	default:
		return OpEqual
	}
}

// tokenize splits s so that joining the tokens gives s back
func tokenize(s string, g Granularity) []string {
	if s == "" {
		return []string{}
	}
	switch g {
	case GranularityChar:
		tokens := make([]string, 0, len(s))
		for _, r := range s {
			tokens = append(tokens, string(r))
		}
		return tokens
	case GranularityLine:
		lines := strings.SplitAfter(s, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		return lines
	default:
		return splitWords(s)
	}
}

// splitWords returns alternating runs of space and non-space runes
func splitWords(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		inSpace = space
	}
	return append(tokens, s[start:])
}
