// Package parser splits free-form localization text into records, one parse
// function per tab. Parse functions never fail as a whole: a record that does
// not fit its expected shape is reported as a *record.ParseError and skipped,
// and the remaining records are still returned.
package parser

import (
	"strings"

	"rbformat/internal/textutil"
)

// splitLines normalizes line endings and splits text into lines.
func splitLines(text string) []string {
	return strings.Split(textutil.Normalize(text), "\n")
}

// paragraphs groups lines into blank-line separated blocks. Whitespace-only
// lines count as blank. Lines inside a block are returned untrimmed.
func paragraphs(text string) [][]string {
	var (
		blocks [][]string
		cur    []string
	)
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}
