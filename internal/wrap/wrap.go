package wrap

import (
	"strings"
	"unicode/utf8"

	"rbformat/internal/record"
)

// Mode selects how a line is broken.
type Mode int

const (
	// ModeWord breaks between whitespace-separated tokens and never splits one.
	ModeWord Mode = iota
	// ModeChar cuts the text into fixed-size rune chunks.
	ModeChar
)

func (m Mode) String() string {
	if m == ModeChar {
		return "char"
	}
	return "word"
}

// ModeFor returns the wrapping mode used for a display language.
func ModeFor(lang record.Language) Mode {
	if lang == record.LangJAP {
		return ModeChar
	}
	return ModeWord
}

// Wrap splits text into lines of at most maxLen runes. A word longer than
// maxLen is kept whole on its own line. A non-positive maxLen returns the
// text unchanged as a single line. Empty text yields no lines.
func Wrap(text string, maxLen int, mode Mode) []string {
	if maxLen <= 0 {
		return []string{text}
	}
	if mode == ModeChar {
		return chunk(text, maxLen)
	}
	return words(text, maxLen)
}

// WrapPadded wraps like Wrap, then right-pads every line with spaces up to
// maxLen. The last line is padded too; game-side JobChange layouts rely on
// every description row having the same width.
func WrapPadded(text string, maxLen int, mode Mode) []string {
	lines := Wrap(text, maxLen, mode)
	if maxLen <= 0 {
		return lines
	}
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n < maxLen {
			lines[i] = line + strings.Repeat(" ", maxLen-n)
		}
	}
	return lines
}

func chunk(text string, maxLen int) []string {
	runes := []rune(text)
	var lines []string
	for start := 0; start < len(runes); start += maxLen {
		end := min(start+maxLen, len(runes))
		lines = append(lines, string(runes[start:end]))
	}
	return lines
}

// isBreak matches ASCII whitespace only; U+3000 stays inside a token.
func isBreak(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func words(text string, maxLen int) []string {
	var (
		lines  []string
		cur    strings.Builder
		curLen int
	)
	for _, tok := range strings.FieldsFunc(text, isBreak) {
		n := utf8.RuneCountInString(tok)
		switch {
		case curLen == 0:
			cur.WriteString(tok)
			curLen = n
		case curLen+1+n <= maxLen:
			cur.WriteByte(' ')
			cur.WriteString(tok)
			curLen += 1 + n
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(tok)
			curLen = n
		}
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
