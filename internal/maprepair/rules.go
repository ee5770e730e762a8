// Package maprepair fixes corrupted dialogue commands in map event scripts
// and re-indents the result by page and branch depth.
package maprepair

import (
	"regexp"
	"strings"

	"rbformat/internal/interpolation"
	"rbformat/internal/textutil"
)

// Rule is one named repair pass over the whole map text.
type Rule struct {
	Name  string
	Apply func(string) string
}

func replace(pattern, repl string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

func replaceFunc(pattern string, fn func(m []string) string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(match string) string {
			return fn(re.FindStringSubmatch(match))
		})
	}
}

var (
	payloadRe = regexp.MustCompile(`ShowText\(\["(.*?)"\]\)`)
	choicesRe = regexp.MustCompile(`ShowChoices\(\[\[(.*?)\],[ \t]*(\d+)\]\)`)
	attrsRe   = regexp.MustCompile(`^(ShowTextAttributes\(\[[^\]\n]+\]\))(?:[ \t]+(\S.*))?$`)
	commandRe = regexp.MustCompile(`^[A-Za-z]+\(`)
)

// Rules is the repair pipeline in application order. Rules that build a
// ShowText command out of a broken one run before the payload cleanup so the
// rebuilt command gets cleaned in the same pass.
var Rules = []Rule{
	{"display-name-quotes", replace(`Display Name = ""([^"\n]*)"`, `Display Name = "${1}"`)},
	{"nested-showtext", replace(`ShowText\(\["ShowText\(\["([^"\n]*)"\]\)"\]\)`, `ShowText(["${1}"])`)},
	{"duplicate-close", replace(`ShowText\(\["([^"\n]*)"\]\)(?:"\]\))+`, `ShowText(["${1}"])`)},
	{"bare-payload", replaceFunc(`(?m)^([ \t]*)\(\["([^"\n]*)"\]\)(.*)$`, func(m []string) string {
		tail := m[3]
		if strings.TrimSpace(tail) == "?" || strings.TrimSpace(tail) == "" {
			tail = ""
		}
		return m[1] + `ShowText(["` + m[2] + `"])` + tail
	})},
	{"truncated-showtext", replace(`\b[A-Za-z]*owText\(\["([^"\n]*)"\]\)`, `ShowText(["${1}"])`)},
	{"stray-text-command", replaceFunc(`\b([A-Za-z]*)Text\(\["([^"\n]*)"\]\)`, func(m []string) string {
		if strings.HasPrefix(m[1], "Show") || strings.HasPrefix(m[1], "Empty") {
			return m[0]
		}
		return `ShowText(["` + m[2] + `"])`
	})},
	{"copy-to-showtext", replace(`\bCopy\(\["([^"\n]*)"\]\)`, `ShowText(["${1}"])`)},
	{"attributes-unclosed-quote", replace(`ShowTextAttributes\(\["([^"\n]*),[ \t]*(\d+),[ \t]*(\d+),[ \t]*(\d+)\]\)`, `ShowTextAttributes(["${1}", ${2}, ${3}, ${4}])`)},
	{"attributes-empty-name", replace(`ShowTextAttributes\(\[,[ \t]*(\d+),[ \t]*(\d+),[ \t]*(\d+)\]\)`, `ShowTextAttributes(["", ${1}, ${2}, ${3}])`)},
	{"command-typos", replace(`(?m)^([ \t]*)(?:howText|ShowTextt|SShowText)\(`, `${1}ShowText(`)},
	{"merged-attributes", replace(`ShowTextShowTextAttributes\((\[[^\]\n]+\])\)`, `ShowTextAttributes(${1})`)},
	{"doubled-command", replace(`ShowTextShowText\(`, `ShowText(`)},
	{"bare-page", replace(`(?m)^([ \t]*)Page[ \t]*$`, `${1}Page 0`)},
	{"double-paren-open", replace(`ShowText\(\(\[`, `ShowText([`)},
	{"double-paren-close", replace(`ShowText\(\["([^"\n]*)"\]\)\)+`, `ShowText(["${1}"])`)},
	{"guillemet-quote-mix", replace(`ShowText\(\["'([^'\n]*)»([^"\n]*)"\]\)`, `ShowText(["«${1}»${2}"])`)},
	{"dash-quotes", replace(`ShowText\(\["([^"\n]*)"[ \t]*([—–-])[ \t]*([^"\n]*)"\]\)`, `ShowText(["${1} ${2} ${3}"])`)},
	{"payload-cleanup", func(s string) string {
		return payloadRe.ReplaceAllStringFunc(s, func(match string) string {
			return `ShowText(["` + cleanPayload(payloadRe.FindStringSubmatch(match)[1]) + `"])`
		})
	}},
	{"control-code-quotes", replace(`\\C\[(\d+)\]>"([^"\n]*)"`, `\C[${1}]>${2}`)},
	{"empty-comment", replace(`(?m)^[ \t]*#[ \t]*$`, ``)},
	{"attributes-comment", splitAttributeTails},
	{"duplicate-attributes", collapseDuplicateAttributes},
	{"show-choices", fixChoices},
	{"nbsp", textutil.ReplaceNBSP},
}

// cleanPayload strips every double quote from a ShowText payload while
// leaving control codes intact, doubles lone backslashes in front of control
// characters, and trims surrounding blanks.
func cleanPayload(s string) string {
	safe, codes := interpolation.Protect(s)
	safe = strings.ReplaceAll(safe, `\"`, "")
	safe = strings.ReplaceAll(safe, `"`, "")
	s = interpolation.Restore(safe, codes)
	return strings.TrimSpace(escapeLoneBackslashes(s))
}

// escapeLoneBackslashes turns a single backslash followed by n, C, < or >
// into a double one. Runs of two or more backslashes are left alone.
func escapeLoneBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}
		run := s[i:j]
		if j-i == 1 && j < len(s) && strings.IndexByte("nC<>", s[j]) >= 0 {
			run = `\\`
		}
		sb.WriteString(run)
		i = j
	}
	return sb.String()
}

// splitAttributeTails moves anything written after a ShowTextAttributes call
// onto its own line: another command as is, anything else as a comment.
func splitAttributeTails(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		m := attrsRe.FindStringSubmatch(trimmed)
		if m == nil || m[2] == "" {
			out = append(out, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		out = append(out, indent+m[1])
		if tail := attributeTail(m[2]); tail != "" {
			out = append(out, indent+tail)
		}
	}
	return strings.Join(out, "\n")
}

func attributeTail(tail string) string {
	tail = strings.TrimSpace(tail)
	if commandRe.MatchString(tail) {
		return tail
	}
	if tail = strings.TrimSpace(strings.TrimLeft(tail, "#")); tail == "" {
		return ""
	}
	return "# " + tail
}

// collapseDuplicateAttributes drops a ShowTextAttributes line that repeats
// the previous non-blank line, together with the blank lines between them.
func collapseDuplicateAttributes(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	last := -1
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out = append(out, line)
			continue
		}
		if last >= 0 && strings.HasPrefix(trimmed, "ShowTextAttributes([") && trimmed == strings.TrimSpace(out[last]) {
			out = out[:last+1]
			continue
		}
		out = append(out, line)
		last = len(out) - 1
	}
	return strings.Join(out, "\n")
}

// fixChoices rewrites every ShowChoices list so each choice is wrapped in
// exactly one pair of quotes. Commas inside a quoted choice do not split it.
func fixChoices(s string) string {
	return choicesRe.ReplaceAllStringFunc(s, func(match string) string {
		m := choicesRe.FindStringSubmatch(match)
		choices := splitChoices(m[1])
		for i, c := range choices {
			c = strings.ReplaceAll(c, `\"`, "")
			c = strings.ReplaceAll(c, `"`, "")
			choices[i] = `"` + strings.TrimSpace(c) + `"`
		}
		return "ShowChoices([[" + strings.Join(choices, ", ") + "], " + m[2] + "])"
	})
}

func splitChoices(s string) []string {
	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && (i == 0 || s[i-1] != '\\') {
			inQuotes = !inQuotes
		}
		if c == ',' && !inQuotes {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if last := strings.TrimSpace(cur.String()); last != "" {
		out = append(out, last)
	}
	return out
}
