package skills

import "testing"

const skillsFile = `# Skills export
Skill 1
Name = "Огненный шар"
Description = "Жжёт"

Skill 2
  name = "Лечение"

Skill 3
Description = "Без имени"

Skill x
Name = "Сломано"
`

func TestParse(t *testing.T) {
	got := Parse(skillsFile)
	want := map[string]string{"1": "Огненный шар", "2": "Лечение"}
	if len(got) != len(want) {
		t.Fatalf("Parse() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Parse()[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestReplace(t *testing.T) {
	names := map[string]string{"1": "Огненный шар", "2": "Лечение"}
	tests := []struct {
		in, want string
	}{
		{"Изучает Skill 1.", "Изучает Огненный шар."},
		{"skill 2 и SKILL  1", "Лечение и Огненный шар"},
		{"Skill 99 неизвестен", "Skill 99 неизвестен"},
		{"Без ссылок", "Без ссылок"},
	}
	for _, tt := range tests {
		if got := Replace(tt.in, names); got != tt.want {
			t.Errorf("Replace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
