package maprepair

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/textutil"
)

// maxPasses bounds the fixpoint loop in Repair.
const maxPasses = 4

var (
	pageRe           = regexp.MustCompile(`^Page \d+$`)
	metadataPrefixes = []string{"Display Name =", "Parallax Name =", "Note =", "CommonEvent", "Name ="}
)

// RepairMapText normalizes line endings, applies every repair rule and
// re-indents the result.
func RepairMapText(input string) string {
	return Reindent(Repair(textutil.Normalize(input)))
}

// Repair runs Rules over text until a full pass changes nothing.
func Repair(text string) string {
	for pass := 0; pass < maxPasses; pass++ {
		before := text
		for _, r := range Rules {
			next := r.Apply(text)
			if next != text {
				log.Debug().Str("rule", r.Name).Int("pass", pass).Msg("Applied map repair")
				text = next
			}
		}
		if text == before {
			break
		}
	}
	return text
}

// Reindent lays out map text: "Page N" headers at two spaces, commands inside
// a page at four plus two per open ConditionalBranch, metadata lines flush
// left. Blank lines are kept except at either end.
func Reindent(text string) string {
	var (
		out    []string
		inPage bool
		depth  int
	)
	indent := func() string {
		base := 2
		if inPage {
			base = 4
		}
		return strings.Repeat(" ", base+2*depth)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			out = append(out, "")
		case pageRe.MatchString(trimmed):
			inPage, depth = true, 0
			out = append(out, "  "+trimmed)
		case strings.HasPrefix(trimmed, "ConditionalBranch(["):
			out = append(out, indent()+trimmed)
			depth++
		case strings.HasPrefix(trimmed, "BranchEnd"):
			depth = max(depth-1, 0)
			out = append(out, indent()+trimmed)
		case isMetadata(trimmed):
			out = append(out, trimmed)
		case inPage:
			out = append(out, pageLines(trimmed, indent())...)
		default:
			out = append(out, trimmed)
		}
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func isMetadata(line string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// commandFixer rewrites one command inside a page, chosen by the command's
// prefix. It returns the lines to emit, without indent.
type commandFixer struct {
	prefix string
	fix    func(line string) []string
}

var commandFixers = []commandFixer{
	{"ShowText([", func(line string) []string { return []string{cleanShowTextLine(line)} }},
	{"ShowTextAttributes([", splitAttributes},
	{"Empty([", func(string) []string { return []string{"Empty([])"} }},
	{"ShowChoices([", func(line string) []string { return []string{fixChoices(line)} }},
}

// pageLines renders one command inside a page. A line whose fixer fails is
// kept as is at the current indent.
func pageLines(line, indent string) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("line", textutil.Truncate(line, 60)).Interface("panic", r).Msg("Kept map line unchanged")
			lines = []string{indent + line}
		}
	}()

	fixed := []string{line}
	for _, c := range commandFixers {
		if strings.HasPrefix(line, c.prefix) {
			fixed = c.fix(line)
			break
		}
	}
	for _, l := range fixed {
		lines = append(lines, indent+l)
	}
	return lines
}

// splitAttributes puts anything after a ShowTextAttributes call on its own
// line.
func splitAttributes(line string) []string {
	m := attrsRe.FindStringSubmatch(line)
	if m == nil {
		return []string{line}
	}
	if tail := attributeTail(m[2]); tail != "" {
		return []string{m[1], tail}
	}
	return []string{m[1]}
}

// cleanShowTextLine rebuilds a ShowText line around its cleaned payload.
// Anything after the last "])" is dropped.
func cleanShowTextLine(line string) string {
	const open = "ShowText(["
	end := strings.LastIndex(line, "])")
	if end < len(open) {
		return line
	}
	payload := strings.TrimSpace(line[len(open):end])
	payload = strings.TrimPrefix(payload, `"`)
	payload = strings.TrimSuffix(payload, `"`)
	return `ShowText(["` + cleanPayload(payload) + `"])`
}
