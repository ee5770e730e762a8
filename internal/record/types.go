package record

import (
	"fmt"
	"strings"
)

// Kind identifies one tab of the reformatter. Each kind has its own record
// shape and its own parse/format pair.
type Kind string

const (
	KindLibrary   Kind = "library"
	KindJobChange Kind = "jobchange"
	KindMedal     Kind = "medal"
	KindFollower  Kind = "follower"
	KindItems     Kind = "items"
	// KindMap is the map-script tab. It has no records; its text goes
	// through the repair pipeline instead.
	KindMap Kind = "map"
)

// Kinds lists every tab in display order.
var Kinds = []Kind{KindLibrary, KindJobChange, KindMedal, KindFollower, KindItems, KindMap}

// ParseKind resolves a tab name, accepting a few common aliases.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "library", "enemy", "library(enemy)":
		return KindLibrary, nil
	case "jobchange", "job", "job-change":
		return KindJobChange, nil
	case "medal", "library(medal)":
		return KindMedal, nil
	case "follower":
		return KindFollower, nil
	case "items", "item":
		return KindItems, nil
	case "map":
		return KindMap, nil
	}
	return "", fmt.Errorf("unknown tab %q", name)
}

// Language is the active display language.
type Language string

const (
	LangRUS Language = "RUS"
	LangJAP Language = "JAP"
)

// ParseLanguage resolves a language code. An empty string means RUS.
func ParseLanguage(code string) (Language, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "RUS", "RU":
		return LangRUS, nil
	case "JAP", "JA", "JP":
		return LangJAP, nil
	}
	return "", fmt.Errorf("unknown language %q", code)
}

// Options is the read-only configuration passed into every formatting call.
type Options struct {
	Language      Language
	MaxLineLength int
}

// IllustrationCredit holds the illustrator line in both languages, as found
// in a Library block. Either side may be empty.
type IllustrationCredit struct {
	RUS string `yaml:"rus,omitempty"`
	JAP string `yaml:"jap,omitempty"`
}

// Library is one declaration block of the enemy library: every ID in IDs
// shares Lines. IDs[0] is the primary ID.
type Library struct {
	Header string             `yaml:"header"`
	IDs    []int              `yaml:"ids"`
	Lines  []string           `yaml:"lines"`
	Credit IllustrationCredit `yaml:"credit,omitempty"`
}

// Primary returns the first declared ID of the block.
func (l Library) Primary() int {
	if len(l.IDs) == 0 {
		return 0
	}
	return l.IDs[0]
}

// Category is one equipment/skills/abilities section of a JobChange block.
type Category struct {
	// Header is the category token including its colon, e.g. "Навыки:".
	Header string   `yaml:"header"`
	Items  []string `yaml:"items"`
}

// Present reports whether the category marker appeared in the block.
func (c Category) Present() bool {
	return c.Header != ""
}

type JobChange struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description []string `yaml:"description"`
	Equipment   Category `yaml:"equipment"`
	Skills      Category `yaml:"skills"`
	Abilities   Category `yaml:"abilities"`
	// Raw is every line of the block, used for the active-language filter.
	Raw string `yaml:"-"`
}

// MedalText is a title/description pair in one language.
type MedalText struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Complete reports whether both fields were captured.
func (m MedalText) Complete() bool {
	return m.Title != "" && m.Description != ""
}

type Medal struct {
	ID       string    `yaml:"id"`
	IconID   string    `yaml:"icon_id"`
	Priority string    `yaml:"priority"`
	JAP      MedalText `yaml:"jap"`
	RUS      MedalText `yaml:"rus"`
}

// Text selects the pair for the given language.
func (m Medal) Text(lang Language) MedalText {
	if lang == LangJAP {
		return m.JAP
	}
	return m.RUS
}

// Dialog is one (text, identifier, count) triple of a follower record.
type Dialog struct {
	Text       string `yaml:"text"`
	Identifier string `yaml:"identifier"`
	Count      string `yaml:"count"`
}

type Follower struct {
	Number      string `yaml:"number"`
	Title       string `yaml:"title"`
	ActorID     string `yaml:"actor_id"`
	Denominator string `yaml:"denominator"`
	Question    Dialog `yaml:"question"`
	Yes         Dialog `yaml:"yes"`
	No          Dialog `yaml:"no"`
}

// Item is one blank-line separated block of the items export. Lines keeps
// the block verbatim so untouched lines survive formatting.
type Item struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	BaseName string   `yaml:"base_name"`
	Rank     string   `yaml:"rank,omitempty"`
	Gem      bool     `yaml:"gem"`
	NameLine int      `yaml:"-"`
	Lines    []string `yaml:"-"`
}
