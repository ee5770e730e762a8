package interpolation

import "testing"

func TestProtectRestore(t *testing.T) {
	tests := []struct {
		in        string
		protected string
		codes     int
	}{
		{`plain text`, `plain text`, 0},
		{`\C[3]Red\C[0] text`, `__CODE0__Red__CODE1__ text`, 2},
		{`line\\nnext`, `line__CODE0__next`, 1},
		{`hi \N[1]!`, `hi __CODE0__!`, 1},
	}
	for _, tt := range tests {
		got, mappings := Protect(tt.in)
		if got != tt.protected {
			t.Errorf("Protect(%q) = %q, want %q", tt.in, got, tt.protected)
		}
		if len(mappings) != tt.codes {
			t.Errorf("Protect(%q) returned %d mappings, want %d", tt.in, len(mappings), tt.codes)
		}
		if back := Restore(got, mappings); back != tt.in {
			t.Errorf("Restore(Protect(%q)) = %q", tt.in, back)
		}
	}
}

func TestProtectedCodesSurviveEdits(t *testing.T) {
	safe, mappings := Protect(`\C[2]>"Имя"`)
	edited := ""
	for _, r := range safe {
		if r != '"' {
			edited += string(r)
		}
	}
	if got := Restore(edited, mappings); got != `\C[2]>Имя` {
		t.Errorf("got %q", got)
	}
}
