package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"rbformat/internal/config"
	"rbformat/internal/record"
)

// isolate runs the test in an empty directory with a clean environment so
// no .env file or RBF_* variable leaks into the result.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"RBF_LANGUAGE", "RBF_MAX_LINE_RUS", "RBF_MAX_LINE_JAP", "RBF_MAX_LINE_JOBCHANGE", "DATABASE_URL", "WORKER_COUNT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	level := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatFromStdin(t *testing.T) {
	isolate(t)
	out, err := run(t, "5,7\nВолк.\n", "format", "--tab", "library", "-")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	for _, want := range []string{"    5 => [\n      \"Волк.\",", "    7 => [\n      \"Волк.\","} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestFormatToFile(t *testing.T) {
	dir := isolate(t)
	dest := filepath.Join(dir, "out.rb")
	if _, err := run(t, "1\nТекст\n", "format", "--tab", "enemy", "-o", dest, "-"); err != nil {
		t.Fatalf("format: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "    1 => [\n      \"Текст\",") {
		t.Errorf("file content = %q", data)
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown tab", []string{"format", "--tab", "skills", "-"}},
		{"missing tab", []string{"format", "-"}},
		{"bad language", []string{"format", "--tab", "library", "--lang", "DE", "-"}},
		{"missing file", []string{"format", "--tab", "library", "no-such-file.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if _, err := run(t, "1\nx\n", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFormatEmptyInput(t *testing.T) {
	isolate(t)
	out, err := run(t, "\n  \n", "format", "--tab", "medal", "-")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestRepairMap(t *testing.T) {
	isolate(t)
	out, err := run(t, "Page\nowText([\"Привет\"])\n", "repair-map", "-")
	if err != nil {
		t.Fatalf("repair-map: %v", err)
	}
	if want := "  Page 0\n    ShowText([\"Привет\"])\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSkills(t *testing.T) {
	dir := isolate(t)
	text := writeFile(t, filepath.Join(dir, "text.txt"), "Изучает Skill 1 и Skill 7.")
	skills := writeFile(t, filepath.Join(dir, "skills.txt"), "Skill 1\nName = \"Огненный шар\"\n")
	out, err := run(t, "", "skills", text, skills)
	if err != nil {
		t.Fatalf("skills: %v", err)
	}
	if want := "Изучает Огненный шар и Skill 7.\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	empty := writeFile(t, filepath.Join(dir, "empty.txt"), "nothing here")
	if _, err := run(t, "", "skills", text, empty); err == nil {
		t.Error("expected an error for a file without skills")
	}
}

func TestRank(t *testing.T) {
	dir := isolate(t)
	items := writeFile(t, filepath.Join(dir, "items.txt"), "Item 10\nName = \"Рубин[B]\"\nDescription = \"[Самоцвет] Красный\"\n")
	japanese := writeFile(t, filepath.Join(dir, "jp.txt"), "Item 10\nName = \"赤の大秘石\"\n")
	out, err := run(t, "", "rank", items, japanese)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if !strings.Contains(out, `Name = "[★2]Рубин"`) {
		t.Errorf("rank not applied: %q", out)
	}
}

const originalLibrary = `module NWConst::Enemy
  ENEMY_DESCRIPTION = {
    1 => [
      "A",
    ],
    2 => [
      "B",
    ],
    3 => [
      "C",
    ],
  } # ENEMY_DESCRIPTION
end
`

func TestMerge(t *testing.T) {
	dir := isolate(t)
	original := writeFile(t, filepath.Join(dir, "Library(Enemy).rb"), originalLibrary)

	formatted := writeFile(t, filepath.Join(dir, "formatted.txt"), "    2 => [\n      \"B2\",\n    ],\n")
	out, err := run(t, "", "merge", "--tab", "library", original, formatted)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := strings.Replace(originalLibrary, `"B"`, `"B2"`, 1) + "\n"
	if out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}

	raw := writeFile(t, filepath.Join(dir, "raw.txt"), "2\nБ2\n")
	out, err = run(t, "", "merge", "--tab", "library", "--raw", original, raw)
	if err != nil {
		t.Fatalf("merge --raw: %v", err)
	}
	if !strings.Contains(out, "    2 => [\n      \"Б2\",") || !strings.Contains(out, `"C"`) || strings.Contains(out, `"B",`) {
		t.Errorf("unexpected merge --raw output:\n%s", out)
	}

	if _, err := run(t, "", "merge", "--tab", "items", original, formatted); err == nil {
		t.Error("expected an error merging the items tab")
	}
}

func TestInspect(t *testing.T) {
	isolate(t)
	out, err := run(t, "1-2\nТекст\n", "inspect", "--tab", "library", "-")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"tab: library", "ids:", "- 1", "- 2", "Текст"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}

	if _, err := run(t, "Page 0\n", "inspect", "--tab", "map", "-"); err == nil {
		t.Error("expected an error inspecting the map tab")
	}
}

func TestBatch(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(in, "201 - Library.txt"), "1\nТекст\n")
	writeFile(t, filepath.Join(in, "maps", "Map001.txt"), "Page\nowText([\"Да\"])\n")
	writeFile(t, filepath.Join(in, "notes.md"), "ignored")
	writeFile(t, filepath.Join(in, "unknown.txt"), "no tab in this name")

	if _, err := run(t, "", "batch", "--workers", "2", in, out); err != nil {
		t.Fatalf("batch: %v", err)
	}

	tests := []struct {
		rel  string
		want string
	}{
		{"201 - Library.txt", "    1 => [\n      \"Текст\","},
		{filepath.Join("maps", "Map001.txt"), "  Page 0\n    ShowText([\"Да\"])"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(out, tt.rel))
		if err != nil {
			t.Fatalf("read %s: %v", tt.rel, err)
		}
		if !strings.Contains(string(data), tt.want) {
			t.Errorf("%s = %q, want it to contain %q", tt.rel, data, tt.want)
		}
	}
	for _, skipped := range []string{"notes.md", "unknown.txt"} {
		if _, err := os.Stat(filepath.Join(out, skipped)); !os.IsNotExist(err) {
			t.Errorf("%s should not be written, stat err = %v", skipped, err)
		}
	}
}

func TestResolveOptions(t *testing.T) {
	cfg := &config.Config{Language: record.LangRUS, MaxLineRUS: 39, MaxLineJAP: 22, MaxLineJobChange: 30}
	tests := []struct {
		name string
		kind record.Kind
		lang string
		max  string
		want record.Options
	}{
		{"defaults", record.KindLibrary, "", "0", record.Options{Language: record.LangRUS, MaxLineLength: 39}},
		{"japanese", record.KindMedal, "JAP", "0", record.Options{Language: record.LangJAP, MaxLineLength: 22}},
		{"jobchange length", record.KindJobChange, "JAP", "0", record.Options{Language: record.LangJAP, MaxLineLength: 30}},
		{"explicit max", record.KindLibrary, "", "50", record.Options{Language: record.LangRUS, MaxLineLength: 50}},
		{"max clamped", record.KindLibrary, "", "3", record.Options{Language: record.LangRUS, MaxLineLength: config.MinLineLength}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := formatCmd()
			_ = cmd.Flags().Set("lang", tt.lang)
			_ = cmd.Flags().Set("max", tt.max)
			got, err := resolveOptions(cmd, cfg, tt.kind)
			if err != nil {
				t.Fatalf("resolveOptions() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if cfg.Language != record.LangRUS {
		t.Errorf("resolveOptions modified the config language to %s", cfg.Language)
	}
}

func TestSetupLogLevel(t *testing.T) {
	level := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })

	tests := []struct {
		name    string
		verbose bool
		want    zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{"", false, zerolog.InfoLevel},
		{"nonsense", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		setupLogLevel(tt.name, tt.verbose)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("setupLogLevel(%q, %v) level = %s, want %s", tt.name, tt.verbose, got, tt.want)
		}
	}
}
