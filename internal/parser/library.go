package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rbformat/internal/record"
)

// maxRangeSpan caps how many IDs a single "a-b" range may expand to.
const maxRangeSpan = 10000

// libraryIDLine matches "12", "3-5", "146, 559, 7-9" with an optional
// trailing "# comment".
var libraryIDLine = regexp.MustCompile(`^\d+(?:-\d+)?(?:\s*,\s*\d+(?:-\d+)?)*(?:\s*#.*)?$`)

var (
	creditRUS = regexp.MustCompile(`^Иллюстрация[:：]\s*(.*)$`)
	creditJAP = regexp.MustCompile(`^イラスト[:：]\s*(.*)$`)
)

// ParseLibrary splits enemy library text into declaration blocks. A block
// starts at an ID line and owns every following line up to the next ID line.
// Lines before the first ID line are ignored. Illustration credit lines are
// lifted out of Lines into Credit.
func ParseLibrary(text string) ([]record.Library, []error) {
	var (
		blocks []record.Library
		errs   []error
		cur    *record.Library
		index  int
	)
	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if libraryIDLine.MatchString(trimmed) {
			flush()
			ids, err := parseIDList(trimmed)
			if err != nil {
				errs = append(errs, record.Malformed(record.KindLibrary, index, trimmed, err.Error()))
				// The body of a bad declaration is dropped, not attached to the previous block.
				index++
				continue
			}
			cur = &record.Library{Header: trimmed, IDs: ids}
			index++
			continue
		}
		if cur == nil {
			continue
		}
		if m := creditRUS.FindStringSubmatch(trimmed); m != nil {
			cur.Credit.RUS = m[1]
			continue
		}
		if m := creditJAP.FindStringSubmatch(trimmed); m != nil {
			cur.Credit.JAP = m[1]
			continue
		}
		cur.Lines = append(cur.Lines, line)
	}
	flush()
	return blocks, errs
}

// parseIDList expands a trimmed ID line into its IDs in declaration order.
func parseIDList(line string) ([]int, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	var ids []int
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", part, err)
		}
		if !isRange {
			ids = append(ids, start)
			continue
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("bad id range %q: %w", part, err)
		}
		if end < start {
			return nil, fmt.Errorf("empty id range %q", part)
		}
		if end-start >= maxRangeSpan {
			return nil, fmt.Errorf("id range %q spans more than %d ids", part, maxRangeSpan)
		}
		for id := start; id <= end; id++ {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids in %q", line)
	}
	return ids, nil
}
