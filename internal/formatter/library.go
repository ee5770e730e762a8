// Package formatter serializes parsed records into the literal Ruby layouts
// the game data files expect. Indentation, quoting and field order are part
// of the output contract.
package formatter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"rbformat/internal/record"
	"rbformat/internal/textutil"
	"rbformat/internal/wrap"
)

const (
	creditPrefixRUS = "Иллюстрация："
	creditPrefixJAP = "イラスト："
)

// Library renders every declared ID as its own block. Each ID takes the
// content of the first block that declared it. IDs inside the range spanned
// by the primary IDs come first in ascending order, then the rest ascending.
func Library(blocks []record.Library, opts record.Options) string {
	if len(blocks) == 0 {
		return ""
	}

	content := make(map[int]record.Library)
	var ids []int
	lo, hi := blocks[0].Primary(), blocks[0].Primary()
	for _, b := range blocks {
		lo, hi = min(lo, b.Primary()), max(hi, b.Primary())
		for _, id := range b.IDs {
			if _, seen := content[id]; seen {
				continue
			}
			content[id] = b
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	var inside, outside []int
	for _, id := range ids {
		if id >= lo && id <= hi {
			inside = append(inside, id)
		} else {
			outside = append(outside, id)
		}
	}

	var sb strings.Builder
	for _, id := range append(inside, outside...) {
		writeLibraryBlock(&sb, id, content[id], opts)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeLibraryBlock(sb *strings.Builder, id int, b record.Library, opts record.Options) {
	var lines []string
	add := func(line string) {
		if line == "" && (len(lines) == 0 || lines[len(lines)-1] == "") {
			return
		}
		lines = append(lines, line)
	}

	mode := wrap.ModeFor(opts.Language)
	for _, raw := range b.Lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			add("")
			continue
		}
		if !textutil.InLanguage(line, opts.Language) {
			continue
		}
		for _, w := range wrap.Wrap(line, opts.MaxLineLength, mode) {
			add(w)
		}
	}

	if credit := creditLine(b.Credit, opts.Language); credit != "" {
		add("")
		add(credit)
	}

	sb.WriteString("    " + strconv.Itoa(id) + " => [\n")
	for _, line := range lines {
		sb.WriteString(`      "` + textutil.EscapeQuotes(line) + "\",\n")
	}
	sb.WriteString("    ],")
}

// creditLine picks the credit for lang, falling back to the other
// language's illustrator name.
func creditLine(c record.IllustrationCredit, lang record.Language) string {
	if lang == record.LangJAP {
		name := cmp.Or(c.JAP, c.RUS)
		if name == "" {
			return ""
		}
		return creditPrefixJAP + name
	}
	name := cmp.Or(c.RUS, c.JAP)
	if name == "" {
		return ""
	}
	return creditPrefixRUS + " " + name
}
