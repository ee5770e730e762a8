package formatter

import (
	"cmp"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/record"
	"rbformat/internal/textutil"
	"rbformat/internal/wrap"
)

const (
	defaultAbilitiesHeader = "Способности:"
	noAbilities            = "Нет"
)

// JobChange renders job-change blocks. Blocks with no text in the active
// language are dropped. The description is wrapped with padding so every row
// has the configured width.
func JobChange(jobs []record.JobChange, opts record.Options) string {
	var sb strings.Builder
	for _, job := range jobs {
		if !textutil.InLanguage(job.Raw, opts.Language) {
			log.Debug().Str("id", job.ID).Msg("Skipping job block without active-language text")
			continue
		}
		writeJobChange(&sb, job, opts)
	}
	return sb.String()
}

func writeJobChange(sb *strings.Builder, job record.JobChange, opts record.Options) {
	sb.WriteString("    " + job.ID + " => " + strings.TrimRight("# "+job.Title, " ") + "\n")
	sb.WriteString("      [[\n")
	if len(job.Description) > 0 {
		desc := strings.Join(job.Description, " ")
		for _, line := range wrap.WrapPadded(desc, opts.MaxLineLength, wrap.ModeFor(opts.Language)) {
			writeQuoted(sb, line)
		}
	}
	sb.WriteString("      ],\n")
	sb.WriteString("    [\n")

	for _, line := range CategoryLines(job.Equipment, opts.MaxLineLength) {
		writeQuoted(sb, line)
	}
	for _, line := range CategoryLines(job.Skills, opts.MaxLineLength) {
		writeQuoted(sb, line)
	}
	abilities := CategoryLines(job.Abilities, opts.MaxLineLength)
	if len(job.Abilities.Items) == 0 && opts.Language == record.LangRUS {
		abilities = []string{headerWithItem(cmp.Or(job.Abilities.Header, defaultAbilitiesHeader), noAbilities)}
	}
	for _, line := range abilities {
		writeQuoted(sb, line)
	}

	writeQuoted(sb, "")
	sb.WriteString("      ]],\n")
}

func writeQuoted(sb *strings.Builder, line string) {
	sb.WriteString(`        "` + textutil.EscapeQuotes(line) + "\",\n")
}

// CategoryLines lays out one category: the header and first item share the
// first line, later items are joined with wide spaces while the line plus a
// one-character trailing reserve stays within maxLen, and each overflow
// starts a new line holding only items. A category with a header but no
// items yields the bare header.
func CategoryLines(c record.Category, maxLen int) []string {
	if !c.Present() {
		return nil
	}
	if len(c.Items) == 0 {
		return []string{c.Header}
	}

	var lines []string
	cur := headerWithItem(c.Header, c.Items[0])
	for _, item := range c.Items[1:] {
		if textutil.RuneLen(cur)+1+textutil.RuneLen(item)+1 <= maxLen {
			cur += string(textutil.WideSpace) + item
			continue
		}
		lines = append(lines, cur)
		cur = item
	}
	return append(lines, cur)
}

// headerWithItem joins a header and its first item. An ASCII colon is
// followed by a space, a full-width colon is not.
func headerWithItem(header, item string) string {
	if strings.HasSuffix(header, ":") {
		return header + " " + item
	}
	return header + item
}
