package formatter

import (
	"strings"

	"rbformat/internal/parser"
	"rbformat/internal/record"
	"rbformat/internal/textutil"
)

// Medal renders medals using the title and description of the active
// language. A medal missing either field in that language is reported and
// left out.
func Medal(medals []record.Medal, opts record.Options) (string, []error) {
	var (
		sb   strings.Builder
		errs []error
	)
	for i, m := range medals {
		text := m.Text(opts.Language)
		if !text.Complete() {
			errs = append(errs, record.Malformed(record.KindMedal, i, m.ID, "no "+string(opts.Language)+" title/description pair"))
			continue
		}
		sb.WriteString("    " + m.ID + " => {\n")
		sb.WriteString("      :icon_id => " + m.IconID + ",\n")
		sb.WriteString(`      :title => "` + textutil.EscapeQuotes(text.Title) + "\",\n")
		sb.WriteString(`      :description => "` + textutil.EscapeQuotes(text.Description) + "\",\n")
		sb.WriteString("      :priority => " + m.Priority + ",\n")
		sb.WriteString("    },\n")
	}
	return sb.String(), errs
}

// Follower renders follower entries separated by newlines. An entry that
// failed to parse is written as its inline error marker.
func Follower(entries []parser.FollowerEntry) string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Invalid != "" {
			out = append(out, e.Invalid)
			continue
		}
		f := e.Follower
		var sb strings.Builder
		sb.WriteString("    " + f.Number + " => { # " + f.Title + "\n")
		sb.WriteString("      :actor_id => " + f.ActorID + ", :denominator => " + f.Denominator + ",\n")
		writeDialog(&sb, "question", f.Question)
		writeDialog(&sb, "yes", f.Yes)
		writeDialog(&sb, "no", f.No)
		sb.WriteString("    },")
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}

func writeDialog(sb *strings.Builder, key string, d record.Dialog) {
	sb.WriteString("      :" + key + ` => ["` + textutil.EscapeQuotes(d.Text) + `", "` + d.Identifier + `", ` + d.Count + "],\n")
}

// Items moves each item's rank tag in front of its name. A gem with an entry
// in rankMap takes that rank. Otherwise, on a first pass with an empty
// rankMap, the trailing "[rank]" already in the name is used. Any other Name
// line is left as is. Blocks are joined with one blank line.
func Items(items []record.Item, rankMap map[string]string) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		lines := it.Lines
		if it.NameLine >= 0 {
			if rank, base := pickRank(it, rankMap); rank != "" {
				lines = append([]string(nil), it.Lines...)
				indent := leadingSpace(lines[it.NameLine])
				lines[it.NameLine] = indent + `Name = "[` + rank + "]" + base + `"`
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func pickRank(it record.Item, rankMap map[string]string) (rank, base string) {
	if override, ok := rankMap[it.ID]; ok && it.Gem && it.ID != "" && override != "" {
		return override, parser.StripLeadingRank(it.BaseName)
	}
	if len(rankMap) == 0 && it.Rank != "" {
		return it.Rank, it.BaseName
	}
	return "", ""
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
