package parser

import (
	"errors"
	"slices"
	"testing"

	"rbformat/internal/record"
)

func TestParseLibraryBlocks(t *testing.T) {
	input := "header noise\n" +
		"5, 7 # wolves\n" +
		"Серый волк.\n" +
		"灰色の狼。\n" +
		"Иллюстрация: Петров\n" +
		"\n" +
		"10-12\n" +
		"Стая.\n" +
		"イラスト：山田\n"

	blocks, errs := ParseLibrary(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	first := blocks[0]
	if !slices.Equal(first.IDs, []int{5, 7}) {
		t.Errorf("first IDs = %v", first.IDs)
	}
	if first.Primary() != 5 {
		t.Errorf("Primary() = %d", first.Primary())
	}
	if first.Header != "5, 7 # wolves" {
		t.Errorf("Header = %q", first.Header)
	}
	if !slices.Equal(first.Lines, []string{"Серый волк.", "灰色の狼。", ""}) {
		t.Errorf("first Lines = %q", first.Lines)
	}
	if first.Credit.RUS != "Петров" || first.Credit.JAP != "" {
		t.Errorf("first Credit = %+v", first.Credit)
	}

	second := blocks[1]
	if !slices.Equal(second.IDs, []int{10, 11, 12}) {
		t.Errorf("second IDs = %v", second.IDs)
	}
	if second.Credit.JAP != "山田" {
		t.Errorf("second Credit = %+v", second.Credit)
	}
}

func TestParseLibraryBadRange(t *testing.T) {
	blocks, errs := ParseLibrary("9-3\nтекст\n4\nДругой текст\n")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], record.ErrMalformedRecord) {
		t.Errorf("error %v does not wrap ErrMalformedRecord", errs[0])
	}
	var pe *record.ParseError
	if !errors.As(errs[0], &pe) || pe.Kind != record.KindLibrary {
		t.Errorf("error %v is not a library ParseError", errs[0])
	}
	if len(blocks) != 1 || blocks[0].IDs[0] != 4 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if !slices.Equal(blocks[0].Lines, []string{"Другой текст", ""}) {
		t.Errorf("Lines = %q", blocks[0].Lines)
	}
}

func TestParseJobChange(t *testing.T) {
	input := "5 # Воин\n" +
		"Сильный боец\n" +
		"ближнего боя.\n" +
		"Экипировка: Меч　Щит\n" +
		"Навыки: Удар Блок\n" +
		"Способности: Сила +10% Защита +5%\n" +
		"\n" +
		"6 # Маг\n" +
		"装備武器：杖\n"

	jobs, _ := ParseJobChange(input)
	if len(jobs) != 2 {
		t.Fatalf("got %d blocks, want 2", len(jobs))
	}
	w := jobs[0]
	if w.ID != "5" || w.Title != "Воин" {
		t.Errorf("header = %q %q", w.ID, w.Title)
	}
	if !slices.Equal(w.Description, []string{"Сильный боец", "ближнего боя."}) {
		t.Errorf("Description = %q", w.Description)
	}
	if w.Equipment.Header != "Экипировка:" || !slices.Equal(w.Equipment.Items, []string{"Меч", "Щит"}) {
		t.Errorf("Equipment = %+v", w.Equipment)
	}
	if !slices.Equal(w.Skills.Items, []string{"Удар", "Блок"}) {
		t.Errorf("Skills = %+v", w.Skills)
	}
	if !slices.Equal(w.Abilities.Items, []string{"Сила +10%", "Защита +5%"}) {
		t.Errorf("Abilities = %+v", w.Abilities)
	}

	m := jobs[1]
	if m.Equipment.Header != "装備武器：" || !slices.Equal(m.Equipment.Items, []string{"杖"}) {
		t.Errorf("JAP equipment = %+v", m.Equipment)
	}
	if m.Skills.Present() || m.Abilities.Present() {
		t.Errorf("unexpected categories in %+v", m)
	}
}

func TestParseMedal(t *testing.T) {
	input := "1 => {\n" +
		":icon_id => 12,\n" +
		"勇者の証\n" +
		"勇者に贈られる。\n" +
		":priority => 3,\n" +
		"},\n" +
		"Знак героя\n" +
		"Вручается герою.\n" +
		"2 => {\n" +
		"Без иконки\n"

	medals, errs := ParseMedal(input)
	if len(medals) != 1 {
		t.Fatalf("got %d medals, want 1", len(medals))
	}
	m := medals[0]
	if m.ID != "1" || m.IconID != "12" || m.Priority != "3" {
		t.Errorf("medal = %+v", m)
	}
	if m.JAP != (record.MedalText{Title: "勇者の証", Description: "勇者に贈られる。"}) {
		t.Errorf("JAP = %+v", m.JAP)
	}
	if m.Text(record.LangRUS) != (record.MedalText{Title: "Знак героя", Description: "Вручается герою."}) {
		t.Errorf("RUS = %+v", m.RUS)
	}
	if len(errs) != 1 || !errors.Is(errs[0], record.ErrMalformedRecord) {
		t.Errorf("errs = %v", errs)
	}
}

func TestParseFollowerStrategies(t *testing.T) {
	tests := []struct {
		name string
		head string
		want [3]record.Dialog
	}{
		{
			name: "distinct pairs",
			head: "1, 2, 3 foo_fc1, 3 foo_fc1, 4 foo_fc2",
			want: [3]record.Dialog{
				{Count: "3", Identifier: "foo_fc1"},
				{Count: "3", Identifier: "foo_fc1"},
				{Count: "4", Identifier: "foo_fc2"},
			},
		},
		{
			name: "positional",
			head: "1, 2, foo_fc1 3, foo_fc1 4, foo_fc1 5",
			want: [3]record.Dialog{
				{Count: "3", Identifier: "foo_fc1"},
				{Count: "4", Identifier: "foo_fc1"},
				{Count: "5", Identifier: "foo_fc1"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.head + "\n7 # Пёс\n«Пойдёшь со мной?»\n\"Да\"\n\"Нет\"\n"
			entries, errs := ParseFollower(input)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(entries) != 1 {
				t.Fatalf("got %d entries", len(entries))
			}
			f := entries[0].Follower
			got := [3]record.Dialog{
				{Count: f.Question.Count, Identifier: f.Question.Identifier},
				{Count: f.Yes.Count, Identifier: f.Yes.Identifier},
				{Count: f.No.Count, Identifier: f.No.Identifier},
			}
			if got != tt.want {
				t.Errorf("dialogs = %+v, want %+v", got, tt.want)
			}
			if f.ActorID != "1" || f.Denominator != "2" || f.Number != "7" || f.Title != "Пёс" {
				t.Errorf("follower = %+v", f)
			}
			if f.Question.Text != "Пойдёшь со мной?" || f.Yes.Text != "Да" || f.No.Text != "Нет" {
				t.Errorf("texts = %q %q %q", f.Question.Text, f.Yes.Text, f.No.Text)
			}
		})
	}
}

func TestParseFollowerErrors(t *testing.T) {
	input := "1, 2, 3 foo_fc1\n7 # a\nq\ny\n\n" +
		"1, 2, 3 4 5\n7 # b\nq\ny\nn\n\n" +
		"1, 2, 3 foo_fc1\n7 # c\nq\ny\nn\n"
	entries, errs := ParseFollower(input)
	if len(entries) != 3 || len(errs) != 3 {
		t.Fatalf("got %d entries and %d errors, want 3 and 3", len(entries), len(errs))
	}
	want := []string{FollowerIncomplete, FollowerNoIdentifier, FollowerIncompleteTalks}
	for i, e := range entries {
		if e.Invalid != want[i] {
			t.Errorf("entry %d Invalid = %q, want %q", i, e.Invalid, want[i])
		}
	}
}

func TestParseItems(t *testing.T) {
	input := "Item 10\nName = \"Рубин[B]\"\nDescription = \"[Самоцвет] Красный\"\n\n\n" +
		"Item 11\n  Name = \"Зелье\"\nDescription = \"Лечит\"\n"
	items, _ := ParseItems(input)
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	ruby := items[0]
	if ruby.ID != "10" || !ruby.Gem || ruby.BaseName != "Рубин" || ruby.Rank != "B" || ruby.NameLine != 1 {
		t.Errorf("ruby = %+v", ruby)
	}
	potion := items[1]
	if potion.ID != "11" || potion.Gem || potion.Rank != "" || potion.BaseName != "Зелье" {
		t.Errorf("potion = %+v", potion)
	}
}

func TestParseItemsLatinC(t *testing.T) {
	items, _ := ParseItems("Item 1\nName = \"X\"\nDescription = \"[C\u0430\u043c\u043e\u0446\u0432\u0435\u0442] y\"\n")
	if len(items) != 1 || !items[0].Gem {
		t.Errorf("Latin C gem marker not detected: %+v", items)
	}
}

func TestStripLeadingRank(t *testing.T) {
	if got := StripLeadingRank("[★2]Рубин"); got != "Рубин" {
		t.Errorf("StripLeadingRank = %q", got)
	}
}
