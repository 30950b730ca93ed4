package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tokenSeparators = regexp.MustCompile(`[,\s]+`)

// Normalize trims the answer and, for case-folding locales, lower-cases it.
// The empty string means unanswered.
func (t *LocaleTable) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !t.CaseFold {
		return s
	}
	// Casers keep state between calls, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}

// Tokenize normalizes s and splits it on runs of commas and whitespace,
// dropping empty tokens.
func (t *LocaleTable) Tokenize(s string) []string {
	s = t.Normalize(s)
	if s == "" {
		return nil
	}
	parts := tokenSeparators.Split(s, -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// runeLen counts characters rather than bytes so Urdu and English answers
// are measured the same way.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// longerThan reports whether s is non-empty and has more than n characters.
func longerThan(s string, n int) bool {
	return s != "" && runeLen(s) > n
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// mutualContains is the bidirectional containment match: a within b or b within a.
func mutualContains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
