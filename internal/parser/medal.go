package parser

import (
	"regexp"
	"strings"

	"rbformat/internal/record"
)

var (
	medalHeader   = regexp.MustCompile(`^(\d+)\s*=>\s*\{`)
	medalIcon     = regexp.MustCompile(`:icon_id\s*=>\s*(\d+)`)
	medalPriority = regexp.MustCompile(`:priority\s*=>\s*(\d+)`)
)

// ParseMedal reads medal records. After the "<id> => {" header the first two
// free-text lines are the Japanese title and description; the two lines after
// the "}," close marker are the Russian pair. Records without an icon or a
// priority are reported and skipped.
func ParseMedal(text string) ([]record.Medal, []error) {
	var (
		medals []record.Medal
		errs   []error
		cur    *record.Medal
		closed bool
		index  int
	)
	flush := func() {
		if cur == nil {
			return
		}
		switch {
		case cur.IconID == "":
			errs = append(errs, record.Malformed(record.KindMedal, index, cur.ID, "missing :icon_id"))
		case cur.Priority == "":
			errs = append(errs, record.Malformed(record.KindMedal, index, cur.ID, "missing :priority"))
		default:
			medals = append(medals, *cur)
		}
		index++
		cur = nil
	}

	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := medalHeader.FindStringSubmatch(line); m != nil {
			flush()
			cur = &record.Medal{ID: m[1]}
			closed = false
			continue
		}
		if cur == nil {
			continue
		}
		if m := medalIcon.FindStringSubmatch(line); m != nil {
			cur.IconID = m[1]
			continue
		}
		if m := medalPriority.FindStringSubmatch(line); m != nil {
			cur.Priority = m[1]
			continue
		}
		if line == "}," || line == "}" {
			closed = true
			continue
		}
		pair := &cur.JAP
		if closed {
			pair = &cur.RUS
		}
		switch {
		case pair.Title == "":
			pair.Title = line
		case pair.Description == "":
			pair.Description = line
		}
	}
	flush()
	return medals, errs
}
