package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"rbformat/internal/record"
)

// WideSpace is the ideographic space used as an item delimiter in JobChange
// category lines.
const WideSpace = '\u3000'

// ContainsCyrillic checks if a string contains Russian letters.
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё' {
			return true
		}
	}
	return false
}

// ContainsJapanese checks if a string contains kana or common kanji.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if (r >= '\u3040' && r <= '\u30ff') || (r >= '\u4e00' && r <= '\u9fbf') {
			return true
		}
	}
	return false
}

// InLanguage reports whether s carries at least one character of lang.
func InLanguage(s string, lang record.Language) bool {
	if lang == record.LangJAP {
		return ContainsJapanese(s)
	}
	return ContainsCyrillic(s)
}

// Normalize converts line endings to \n and composes the text to NFC so
// decomposed letters (й, ё, voiced kana) match the language checks.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// ReplaceNBSP swaps non-breaking spaces for plain spaces.
func ReplaceNBSP(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}

// EscapeQuotes backslash-escapes every double quote.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// RuneLen is the length used for every line-width computation.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
