package question

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var folder = cases.Fold()

// NormalizeLanguage reduces a language tag to its base language ("EN-us" -> "en").
// Values that do not parse as a BCP 47 tag are trimmed and lowercased.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}

// NormalizeMode trims and case folds a mode name.
func NormalizeMode(mode string) string {
	return folder.String(strings.TrimSpace(mode))
}

// CanonicalDifficulty returns the canonical string form of a difficulty.
// Spreadsheet cells often carry integers as "2.0".
func CanonicalDifficulty(difficulty string) string {
	difficulty = strings.TrimSpace(difficulty)
	f, err := strconv.ParseFloat(difficulty, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return difficulty
	}
	if f == math.Trunc(f) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Key identifies one cache entry
type Key struct {
	Language   string
	Mode       string
	Difficulty string
}

// NewKey builds a normalized cache key
func NewKey(lang, mode, difficulty string) Key {
	return Key{
		Language:   NormalizeLanguage(lang),
		Mode:       NormalizeMode(mode),
		Difficulty: CanonicalDifficulty(difficulty),
	}
}

func (k Key) String() string {
	return k.Language + "-" + k.Mode + "-" + k.Difficulty
}
