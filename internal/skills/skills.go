// Package skills replaces "Skill <n>" references in translated text with
// the skill names from a skills export.
package skills

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/textutil"
)

var (
	skillSplit = regexp.MustCompile(`(?m)^Skill\s+`)
	skillNum   = regexp.MustCompile(`^(\d+)`)
	nameLine   = regexp.MustCompile(`(?i)^Name\s*=\s*"`)
	nameValue  = regexp.MustCompile(`(?i)Name\s*=\s*"([^"]+)"`)
	reference  = regexp.MustCompile(`(?i)Skill\s+(\d+)`)
)

// Parse reads a skills export made of "Skill <n>" blocks and maps each
// number to the value of the block's first Name line.
func Parse(text string) map[string]string {
	names := make(map[string]string)
	for i, chunk := range skillSplit.Split(textutil.Normalize(text), -1) {
		if i == 0 || strings.TrimSpace(chunk) == "" {
			continue
		}
		lines := strings.Split(chunk, "\n")
		num := skillNum.FindStringSubmatch(strings.TrimSpace(lines[0]))
		if num == nil {
			continue
		}
		for _, line := range lines {
			if !nameLine.MatchString(strings.TrimSpace(line)) {
				continue
			}
			if m := nameValue.FindStringSubmatch(line); m != nil {
				if name := strings.TrimSpace(m[1]); name != "" {
					names[num[1]] = name
				}
			}
			break
		}
	}
	log.Debug().Int("skills", len(names)).Msg("Parsed skills")
	return names
}

// Replace swaps every "Skill <n>" reference for its name. Unknown numbers
// are left as they are.
func Replace(text string, names map[string]string) string {
	return reference.ReplaceAllStringFunc(text, func(match string) string {
		if name, ok := names[reference.FindStringSubmatch(match)[1]]; ok {
			return name
		}
		return match
	})
}
