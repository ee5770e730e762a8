package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"rbformat/internal/record"
	"rbformat/internal/textutil"
)

type jobSection int

const (
	sectionDescription jobSection = iota
	sectionEquipment
	sectionSkills
	sectionAbilities
)

var (
	jobHeader       = regexp.MustCompile(`^(\d+)\s*#(.*)$`)
	equipmentMarker = regexp.MustCompile(`(?i)^(?:Экипировка|装備武器)[：:]`)
	skillsMarker    = regexp.MustCompile(`(?i)^(?:Навыки|スキル)[：:]`)
	abilityMarker   = regexp.MustCompile(`(?i)^(?:Способность|Способности|アビリティ)[：:]`)
	categoryHeader  = regexp.MustCompile(`^([^：:]+[：:])\s*(.*)$`)
)

type jobBlock struct {
	id, title string
	raw       []string
	sections  [4][]string
}

// ParseJobChange splits job-change text into blocks. A block starts at a
// "<id> # <title>" line; category markers switch which list following lines
// accumulate into, and everything before the first marker is description.
func ParseJobChange(text string) ([]record.JobChange, []error) {
	var (
		blocks []*jobBlock
		cur    *jobBlock
		sec    jobSection
	)
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if m := jobHeader.FindStringSubmatch(trimmed); m != nil {
			cur = &jobBlock{id: m[1], title: strings.TrimSpace(m[2]), raw: []string{trimmed}}
			blocks = append(blocks, cur)
			sec = sectionDescription
			continue
		}
		if cur == nil || trimmed == "" {
			continue
		}
		cur.raw = append(cur.raw, trimmed)
		switch {
		case equipmentMarker.MatchString(trimmed):
			sec = sectionEquipment
		case skillsMarker.MatchString(trimmed):
			sec = sectionSkills
		case abilityMarker.MatchString(trimmed):
			sec = sectionAbilities
		}
		cur.sections[sec] = append(cur.sections[sec], trimmed)
	}

	records := make([]record.JobChange, 0, len(blocks))
	for _, b := range blocks {
		records = append(records, record.JobChange{
			ID:          b.id,
			Title:       b.title,
			Description: b.sections[sectionDescription],
			Equipment:   buildCategory(b.sections[sectionEquipment], false),
			Skills:      buildCategory(b.sections[sectionSkills], false),
			Abilities:   buildCategory(b.sections[sectionAbilities], true),
			Raw:         strings.Join(b.raw, "\n"),
		})
	}
	return records, nil
}

// buildCategory takes the lines of one section, the first being the marker
// line, and splits them into items. When any line uses the wide space as a
// separator, every line is split on it; otherwise on ordinary whitespace.
func buildCategory(lines []string, abilities bool) record.Category {
	if len(lines) == 0 {
		return record.Category{}
	}
	var cat record.Category
	bodies := make([]string, 0, len(lines))
	for i, line := range lines {
		if m := categoryHeader.FindStringSubmatch(line); m != nil && (i == 0 || isMarker(line)) {
			if cat.Header == "" {
				cat.Header = strings.TrimSpace(m[1])
			}
			line = m[2]
		}
		bodies = append(bodies, line)
	}

	wide := false
	for _, b := range bodies {
		if strings.ContainsRune(b, textutil.WideSpace) {
			wide = true
			break
		}
	}
	for _, b := range bodies {
		switch {
		case wide:
			for _, item := range strings.Split(b, string(textutil.WideSpace)) {
				if item = strings.TrimSpace(item); item != "" {
					cat.Items = append(cat.Items, item)
				}
			}
		case abilities:
			cat.Items = append(cat.Items, splitAbilities(b)...)
		default:
			cat.Items = append(cat.Items, strings.Fields(b)...)
		}
	}
	return cat
}

func isMarker(line string) bool {
	return equipmentMarker.MatchString(line) || skillsMarker.MatchString(line) || abilityMarker.MatchString(line)
}

// splitAbilities breaks a space-separated ability list before every word that
// starts with a capital Cyrillic letter, so "Сила +10% Защита +5%" yields two
// abilities.
func splitAbilities(line string) []string {
	var (
		items []string
		cur   []string
	)
	for _, word := range strings.Fields(line) {
		r, _ := utf8.DecodeRuneInString(word)
		if len(cur) > 0 && ((r >= 'А' && r <= 'Я') || r == 'Ё') {
			items = append(items, strings.Join(cur, " "))
			cur = nil
		}
		cur = append(cur, word)
	}
	if len(cur) > 0 {
		items = append(items, strings.Join(cur, " "))
	}
	return items
}
