package parser

import (
	"regexp"
	"strings"

	"rbformat/internal/record"
)

var (
	itemID       = regexp.MustCompile(`^Item\s+(\d+)`)
	itemGem      = regexp.MustCompile(`Description = "\[[СC]амоцвет]`)
	itemName     = regexp.MustCompile(`Name = "(.*)"`)
	itemRankTail = regexp.MustCompile(`\[([^\]]+)\]$`)
	itemLeadRank = regexp.MustCompile(`^\[[^\]]+\]`)
)

// ParseItems splits an items export into blank-line separated blocks. Every
// block is kept, even one without an "Item <id>" line, so formatting can
// write the export back in full.
func ParseItems(text string) ([]record.Item, []error) {
	var items []record.Item
	for _, lines := range paragraphs(text) {
		it := record.Item{NameLine: -1, Lines: lines}
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if it.ID == "" {
				if m := itemID.FindStringSubmatch(trimmed); m != nil {
					it.ID = m[1]
				}
			}
			if itemGem.MatchString(line) {
				it.Gem = true
			}
			if it.NameLine < 0 && strings.HasPrefix(trimmed, "Name =") {
				it.NameLine = i
				if m := itemName.FindStringSubmatch(trimmed); m != nil {
					it.Name = m[1]
				}
				it.BaseName = strings.TrimSpace(itemRankTail.ReplaceAllString(it.Name, ""))
				if m := itemRankTail.FindStringSubmatch(it.Name); m != nil {
					it.Rank = m[1]
				}
			}
		}
		items = append(items, it)
	}
	return items, nil
}

// StripLeadingRank removes a "[rank]" prefix left by an earlier formatting
// pass.
func StripLeadingRank(name string) string {
	return itemLeadRank.ReplaceAllString(name, "")
}
