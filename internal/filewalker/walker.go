package filewalker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"rbformat/internal/record"
)

// SupportedExtensions lists the file types picked up by Walk.
var SupportedExtensions = map[string]bool{
	".txt": true,
	".rb":  true,
}

// Encoding names the encoding a file was decoded from.
type Encoding string

const (
	UTF8     Encoding = "UTF-8"
	UTF8BOM  Encoding = "UTF-8 BOM"
	UTF16LE  Encoding = "UTF-16LE"
	UTF16BE  Encoding = "UTF-16BE"
	ShiftJIS Encoding = "Shift_JIS"
)

// kindHints maps file name fragments to tabs. Medal is listed before
// library since its export is called "Library(Medal)".
var kindHints = []struct {
	fragment string
	kind     record.Kind
}{
	{"medal", record.KindMedal},
	{"enemy", record.KindLibrary},
	{"library", record.KindLibrary},
	{"jobchange", record.KindJobChange},
	{"job_change", record.KindJobChange},
	{"job-change", record.KindJobChange},
	{"follower", record.KindFollower},
	{"item", record.KindItems},
	{"map", record.KindMap},
}

// InferKind guesses the tab of a file from its name, e.g.
// "201 - Library(Enemy).rb" is a library file.
func InferKind(path string) (record.Kind, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, h := range kindHints {
		if strings.Contains(name, h.fragment) {
			return h.kind, true
		}
	}
	return "", false
}

// Walker discovers input files and assigns each one a tab.
type Walker struct {
	kind record.Kind
}

// NewWalker creates a Walker. A non-empty kind is used for every file;
// otherwise the kind is inferred from each file name.
func NewWalker(kind record.Kind) *Walker {
	return &Walker{kind: kind}
}

// FileEntry is a discovered file ready for formatting.
type FileEntry struct {
	Path string
	// Rel is Path relative to the walk root.
	Rel  string
	Kind record.Kind
}

// Walk discovers all supported files under root.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() || !SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		kind := w.kind
		if kind == "" {
			var ok bool
			if kind, ok = InferKind(path); !ok {
				log.Debug().Str("path", path).Msg("Skipping file with unknown tab")
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		entries = append(entries, FileEntry{Path: path, Rel: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// ReadText reads a file and decodes it to UTF-8.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, enc, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	if enc != UTF8 {
		log.Debug().Str("path", path).Str("encoding", string(enc)).Msg("Decoded file")
	}
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts data to UTF-8. A UTF-8 or UTF-16 byte order mark wins;
// otherwise valid UTF-8 is kept and anything else is read as Shift_JIS.
func Decode(data []byte) (string, Encoding, error) {
	var (
		dec transform.Transformer
		enc Encoding
	)
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return string(data[len(utf8BOM):]), UTF8BOM, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		dec, enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), UTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec, enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), UTF16BE
	case utf8.Valid(data):
		return string(data), UTF8, nil
	default:
		dec, enc = japanese.ShiftJIS.NewDecoder(), ShiftJIS
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", enc, err
	}
	return string(out), enc, nil
}
