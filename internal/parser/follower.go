package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"rbformat/internal/record"
)

// Inline markers emitted in place of a follower record that cannot be read.
const (
	FollowerIncomplete      = "Ошибка: неполные данные"
	FollowerNoIdentifier    = "Ошибка: не найден идентификатор"
	FollowerIncompleteTalks = "Ошибка: неполные данные диалогов"
)

var (
	followerIdentifier = regexp.MustCompile(`[a-zA-Z0-9_-]+_fc\d+`)
	followerPair       = regexp.MustCompile(`(\d+)\s+([a-zA-Z0-9_-]+_fc\d+)`)
	followerCountHead  = regexp.MustCompile(`(\d+)(?:\s|$)`)
	followerCountLead  = regexp.MustCompile(`^(\d+)`)
)

// FollowerEntry is one paragraph of follower input. Invalid holds the inline
// marker to print when the paragraph could not be parsed.
type FollowerEntry struct {
	record.Follower `yaml:",inline"`
	Invalid         string `yaml:"invalid,omitempty"`
}

// ParseFollower reads blank-line separated follower paragraphs of at least
// five lines. Paragraphs that fail keep their position in the result with
// Invalid set, and the failure is also reported in the error list.
func ParseFollower(text string) ([]FollowerEntry, []error) {
	var (
		entries []FollowerEntry
		errs    []error
	)
	for i, block := range paragraphs(text) {
		f, marker, reason := parseFollowerBlock(block)
		if marker != "" {
			errs = append(errs, record.Malformed(record.KindFollower, i, "", reason))
			entries = append(entries, FollowerEntry{Invalid: marker})
			continue
		}
		entries = append(entries, FollowerEntry{Follower: f})
	}
	return entries, errs
}

func parseFollowerBlock(lines []string) (record.Follower, string, string) {
	if len(lines) < 5 {
		return record.Follower{}, FollowerIncomplete, "fewer than 5 lines"
	}

	head := strings.Split(lines[0], ",")
	for i := range head {
		head[i] = strings.TrimSpace(head[i])
	}
	if len(head) < 3 {
		return record.Follower{}, FollowerIncomplete, "first line needs actor id, denominator and dialog info"
	}
	info := strings.Join(head[2:], " ")

	dialogs, ok := extractDialogs(info)
	if !ok {
		if !followerIdentifier.MatchString(info) {
			return record.Follower{}, FollowerNoIdentifier, "no _fc identifier in dialog info"
		}
		return record.Follower{}, FollowerIncompleteTalks, "fewer than three dialog counts"
	}

	number, title, _ := strings.Cut(lines[1], "#")
	f := record.Follower{
		Number:      strings.TrimSpace(number),
		Title:       strings.TrimSpace(title),
		ActorID:     head[0],
		Denominator: head[1],
		Question:    dialogs[0],
		Yes:         dialogs[1],
		No:          dialogs[2],
	}
	f.Question.Text = unquote(lines[2])
	f.Yes.Text = unquote(lines[3])
	f.No.Text = unquote(lines[4])
	return f, "", ""
}

// extractDialogs finds the three (count, identifier) pairs. Strategies run in
// order: any three "N name_fcK" pairs, then three pairs sharing the first
// identifier, then counts read positionally around that identifier.
func extractDialogs(info string) ([3]record.Dialog, bool) {
	var out [3]record.Dialog

	first := followerIdentifier.FindString(info)
	if first == "" {
		return out, false
	}

	if pairs := followerPair.FindAllStringSubmatch(info, -1); len(pairs) >= 3 {
		for i := range out {
			out[i] = record.Dialog{Count: pairs[i][1], Identifier: pairs[i][2]}
		}
		return out, true
	}

	same := regexp.MustCompile(`(\d+)\s+` + regexp.QuoteMeta(first))
	if pairs := same.FindAllStringSubmatch(info, -1); len(pairs) >= 3 {
		for i := range out {
			out[i] = record.Dialog{Count: pairs[i][1], Identifier: first}
		}
		return out, true
	}

	parts := strings.Split(info, first)
	var counts []string
	for _, part := range parts[:len(parts)-1] {
		if m := followerCountHead.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			counts = append(counts, m[1])
		}
	}
	if len(counts) < 3 {
		last := strings.TrimSpace(parts[len(parts)-1])
		if m := followerCountLead.FindStringSubmatch(last); m != nil {
			counts = append(counts, m[1])
		}
	}
	if len(counts) < 3 {
		return out, false
	}
	for i := range out {
		out[i] = record.Dialog{Count: counts[i], Identifier: first}
	}
	return out, true
}

var quotePairs = map[rune]rune{
	'"': '"',
	'“': '”',
	'„': '“',
	'«': '»',
	'「': '」',
	'『': '』',
	'\'': '\'',
}

// unquote strips one pair of outer quote marks, then any stray double quote
// left at either end.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	open, n := utf8.DecodeRuneInString(s)
	closeRune, m := utf8.DecodeLastRuneInString(s)
	if want, ok := quotePairs[open]; ok && want == closeRune && len(s) >= n+m {
		s = s[n : len(s)-m]
	}
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}
