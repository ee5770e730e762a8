package interpolation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Mapping stores the original control code and its safe replacement.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

// codeMatch stores a detected control code position.
type codeMatch struct {
	start, end int
	value      string
}

// patterns detect message control codes in map dialogue text.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\\\\?[Cn<>\[\]](?:\[\d+\])?`), // \C[3], \\C[3], \n, \<, \>
	regexp.MustCompile(`\\\\?[VNPIG]\[\d+\]`),         // \V[1] variables, \N[2] actor names
}

// Protect replaces all control codes with __CODEn__ placeholders so that
// text edits cannot touch them. Returns the safe string and the mapping
// needed to restore the codes.
func Protect(text string) (string, []Mapping) {
	var all []codeMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, codeMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return text, nil
	}

	// By position, longest first on ties.
	slices.SortFunc(all, func(a, b codeMatch) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return (b.end - b.start) - (a.end - a.start)
	})

	var filtered []codeMatch
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.end
		}
	}

	mappings := make([]Mapping, len(filtered))
	var sb strings.Builder
	prev := 0
	for i, m := range filtered {
		placeholder := fmt.Sprintf("__CODE%d__", i)
		mappings[i] = Mapping{Original: m.value, Placeholder: placeholder, Index: i}
		sb.WriteString(text[prev:m.start])
		sb.WriteString(placeholder)
		prev = m.end
	}
	sb.WriteString(text[prev:])
	return sb.String(), mappings
}

// Restore puts the original control codes back in place of their placeholders.
func Restore(text string, mappings []Mapping) string {
	for _, m := range mappings {
		text = strings.Replace(text, m.Placeholder, m.Original, 1)
	}
	return text
}
