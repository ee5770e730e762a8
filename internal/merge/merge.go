// Package merge writes freshly formatted records back into the original
// Ruby data file, replacing only the records whose IDs were reformatted.
//
// The data files have no formal grammar. Locating the dictionary relies on
// an ordered list of declaration and terminator matchers, first match wins,
// and a file that defeats all of them is reported rather than guessed at.
package merge

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/record"
	"rbformat/internal/textutil"
)

var (
	ErrDeclarationNotFound = errors.New("dictionary declaration not found")
	ErrTerminatorNotFound  = errors.New("dictionary terminator not found")
	ErrNoRecords           = errors.New("no records to merge")
	ErrUnsupportedKind     = errors.New("tab does not support merging")
)

// Layout describes where the records of one tab live in its data file.
type Layout struct {
	// Declarations are tried in order; the first one found anywhere in the
	// file is used.
	Declarations []*regexp.Regexp
	// CombineHeaders merges the "# title" comment of a replaced record with
	// the original one.
	CombineHeaders bool
	// AppendMissing adds records absent from the original after its last
	// record.
	AppendMissing bool
}

var genericDeclaration = regexp.MustCompile(`^\s*[A-Z][A-Z0-9_]*\s*=\s*\{`)

func declaration(name string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + name + `\s*=\s*\{`)
}

var layouts = map[record.Kind]Layout{
	record.KindLibrary: {
		Declarations: []*regexp.Regexp{declaration("ENEMY_DESCRIPTION"), declaration("ENEMY")},
	},
	record.KindJobChange: {
		Declarations:   []*regexp.Regexp{declaration("JOB_DESC_TEXT"), declaration("JOB_CHANGE")},
		CombineHeaders: true,
	},
	record.KindMedal: {
		Declarations:  []*regexp.Regexp{declaration("MEDAL"), genericDeclaration},
		AppendMissing: true,
	},
	record.KindFollower: {
		Declarations: []*regexp.Regexp{declaration("FOLLOWER"), genericDeclaration},
	},
}

// LayoutFor returns the merge layout of kind.
func LayoutFor(kind record.Kind) (Layout, error) {
	l, ok := layouts[kind]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	return l, nil
}

// Fallback terminators, used when no line is a bare "}" or "} # ...". The
// earliest match after the declaration wins.
var closingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\}\s*#\s*end of`),
	regexp.MustCompile(`(?i)\}\s*#\s*end`),
	regexp.MustCompile(`\}\s*#`),
	regexp.MustCompile(`\}\s*\n\s*end\b`),
	regexp.MustCompile(`(?m)\}\s*$`),
}

var recordStart = regexp.MustCompile(`^\s*(\d+)\s*=>`)

type block struct {
	id    string
	lines []string
}

// Merge replaces the records of kind in original with the records found in
// formatted. Records not present in formatted are kept byte for byte.
func Merge(kind record.Kind, original, formatted string) (string, error) {
	layout, err := LayoutFor(kind)
	if err != nil {
		return "", err
	}
	original = strings.ReplaceAll(original, "\r\n", "\n")
	formatted = strings.ReplaceAll(formatted, "\r\n", "\n")

	lines := strings.Split(original, "\n")
	start, err := findDeclaration(lines, layout.Declarations)
	if err != nil {
		return "", fmt.Errorf("merge %s: %w", kind, err)
	}
	end, err := findTerminator(lines, start)
	if err != nil {
		return "", fmt.Errorf("merge %s: %w", kind, err)
	}

	preamble, orig := splitBlocks(lines[start+1 : end])
	lead, fresh := splitBlocks(strings.Split(formatted, "\n"))
	stray := nonBlank(lead)
	if len(orig) == 0 {
		return "", fmt.Errorf("merge %s: original dictionary: %w", kind, ErrNoRecords)
	}
	if len(fresh) == 0 {
		return "", fmt.Errorf("merge %s: formatted text: %w", kind, ErrNoRecords)
	}

	byID := make(map[string]block, len(fresh))
	for _, b := range fresh {
		var dropped []string
		b.lines, dropped = closeBlock(b.lines)
		stray = append(stray, dropped...)
		byID[b.id] = b
	}
	for _, line := range stray {
		log.Warn().Str("tab", string(kind)).Str("line", textutil.Truncate(line, 60)).Msg("Dropped text outside records")
	}

	body := append([]string(nil), preamble...)
	replaced := 0
	seen := make(map[string]bool, len(orig))
	for _, b := range orig {
		seen[b.id] = true
		nb, ok := byID[b.id]
		if !ok {
			body = append(body, b.lines...)
			continue
		}
		repl := nb.lines
		if layout.CombineHeaders {
			repl = append([]string{combineHeader(b.lines[0], nb.lines[0], b.id)}, nb.lines[1:]...)
		}
		body = append(body, repl...)
		replaced++
	}

	appended := 0
	if layout.AppendMissing {
		for _, b := range fresh {
			if !seen[b.id] {
				body = append(trimTrailingBlank(body), byID[b.id].lines...)
				seen[b.id] = true
				appended++
			}
		}
	}

	out := make([]string, 0, len(lines)+len(body))
	out = append(out, lines[:start+1]...)
	out = append(out, body...)
	out = append(out, lines[end:]...)

	log.Debug().
		Str("tab", string(kind)).
		Int("records", len(orig)).
		Int("replaced", replaced).
		Int("appended", appended).
		Int("dropped", len(stray)).
		Msg("Merged records")
	return removeBlankLinesBetweenRecords(strings.Join(out, "\n")), nil
}

func findDeclaration(lines []string, candidates []*regexp.Regexp) (int, error) {
	for _, re := range candidates {
		for i, line := range lines {
			if re.MatchString(line) {
				return i, nil
			}
		}
	}
	return 0, ErrDeclarationNotFound
}

// findTerminator returns the index of the line closing the dictionary that
// opens on line start.
func findTerminator(lines []string, start int) (int, error) {
	for i := start + 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if t == "}" || strings.HasPrefix(t, "} #") {
			return i, nil
		}
	}

	rest := strings.Join(lines[start+1:], "\n")
	best := -1
	for _, re := range closingPatterns {
		if loc := re.FindStringIndex(rest); loc != nil && (best < 0 || loc[0] < best) {
			best = loc[0]
		}
	}
	if best < 0 {
		return 0, ErrTerminatorNotFound
	}
	return start + 1 + strings.Count(rest[:best], "\n"), nil
}

// splitBlocks cuts lines into records starting at "<id> =>". Lines before
// the first record are returned separately.
func splitBlocks(lines []string) ([]string, []block) {
	var (
		preamble []string
		blocks   []block
	)
	for _, line := range lines {
		if m := recordStart.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, block{id: m[1], lines: []string{line}})
			continue
		}
		if len(blocks) == 0 {
			preamble = append(preamble, line)
			continue
		}
		last := &blocks[len(blocks)-1]
		last.lines = append(last.lines, line)
	}
	return preamble, blocks
}

// closeBlock cuts a formatted record after its last closing line ("],",
// "]]," or "},"). Non-blank lines after it, such as inline error markers
// printed between records, are returned as dropped. A record with no closing
// line only loses its trailing blank lines.
func closeBlock(lines []string) (kept, dropped []string) {
	end := -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case "],", "]],", "},":
			end = i
		}
	}
	if end < 0 {
		return trimTrailingBlank(lines), nil
	}
	return lines[:end+1], nonBlank(lines[end+1:])
}

func nonBlank(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var headerComment = regexp.MustCompile(`#\s*([^#]+?)\s*$`)

// combineHeader builds the first line of a replaced JobChange record from
// the original and new header comments.
func combineHeader(origLine, newLine, id string) string {
	indent := origLine[:len(origLine)-len(strings.TrimLeft(origLine, " \t"))]
	head := indent + id + " =>"

	var orig, fresh string
	if m := headerComment.FindStringSubmatch(origLine); m != nil {
		orig = m[1]
	}
	if m := headerComment.FindStringSubmatch(newLine); m != nil {
		fresh = m[1]
	}

	var comment string
	switch {
	case orig == fresh || fresh == "":
		comment = orig
	case orig == "":
		comment = fresh
	case strings.Contains(orig, fresh):
		comment = orig
	case strings.Contains(fresh, orig):
		comment = fresh
	default:
		comment = orig + "/" + fresh
	}
	if comment == "" {
		return head
	}
	return head + " # " + comment
}

var recordEnd = regexp.MustCompile(`(?:\]\]|\]|\}),\s*$`)

// removeBlankLinesBetweenRecords drops blank lines sitting between the
// closing line of one record and the first line of the next.
func removeBlankLinesBetweenRecords(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	lastNonBlank := ""
	for i, line := range lines {
		if strings.TrimSpace(line) == "" && recordEnd.MatchString(lastNonBlank) && nextNonBlankStartsRecord(lines[i+1:]) {
			continue
		}
		if strings.TrimSpace(line) != "" {
			lastNonBlank = line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func nextNonBlankStartsRecord(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return recordStart.MatchString(line)
		}
	}
	return false
}
