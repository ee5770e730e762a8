// Package rank derives item rank tags from the Japanese item names and
// applies them to the translated item list.
package rank

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/formatter"
	"rbformat/internal/parser"
	"rbformat/internal/textutil"
)

// Keyword maps a gem-tier word in a Japanese item name to its rank tag.
type Keyword struct {
	Word string
	Rank string
}

// Keywords is ordered longest word first so that 大秘石 is matched before
// the 秘石 it contains.
var Keywords = []Keyword{
	{"無限秘石", "★7"},
	{"究極秘石", "★8"},
	{"混沌秘石", "★9"},
	{"最終秘石", "★10"},
	{"大秘石", "★2"},
	{"超秘石", "★3"},
	{"絶秘石", "★4"},
	{"極秘石", "★5"},
	{"神秘石", "★6"},
	{"秘石", "★1"},
}

var (
	itemSplit = regexp.MustCompile(`(?m)^Item `)
	leadingID = regexp.MustCompile(`^(\d+)`)
	nameField = regexp.MustCompile(`Name = "([^"]+)"`)
)

// Lookup returns the rank tag for a Japanese item name, or "" when the name
// has no gem-tier word.
func Lookup(name string) string {
	for _, k := range Keywords {
		if strings.Contains(name, k.Word) {
			return k.Rank
		}
	}
	return ""
}

// BuildRankMap scans a Japanese items file and maps each item ID to the rank
// tag found in its name. Items without an ID, a name or a tier word are left
// out.
func BuildRankMap(text string) map[string]string {
	ranks := make(map[string]string)
	for _, chunk := range itemSplit.Split(textutil.Normalize(text), -1) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		id := leadingID.FindStringSubmatch(chunk)
		name := nameField.FindStringSubmatch(chunk)
		if id == nil || name == nil {
			continue
		}
		if r := Lookup(name[1]); r != "" {
			ranks[id[1]] = r
		}
	}
	log.Debug().Int("ranks", len(ranks)).Msg("Built rank map")
	return ranks
}

// ApplyRankMap re-formats translated item blocks, giving every gem whose ID
// is in ranks the mapped rank tag.
func ApplyRankMap(text string, ranks map[string]string) string {
	items, _ := parser.ParseItems(text)
	return formatter.Items(items, ranks)
}
