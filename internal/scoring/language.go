package scoring

import (
	"slices"
	"strings"
)

const commandPoints = 3

// ScoreLanguage scores the seven language checks for a maximum of 9 points.
// Object naming only checks that something was entered.
func (t *LocaleTable) ScoreLanguage(a *LanguageAnswers) int {
	if a == nil {
		return 0
	}
	score := 0

	if t.Normalize(a.Object1.Answer) != "" {
		score++
	}
	if t.Normalize(a.Object2.Answer) != "" {
		score++
	}

	if rep := t.Normalize(a.Repetition); (rep != "" && rep == t.RepetitionSentence) || bool(a.RepetitionAudio) {
		score++
	}

	if t.affirmed(a.Command, t.CompletionKeywords) {
		score += commandPoints
	}

	if t.affirmed(a.Reading, t.ReadingKeywords) {
		score++
	}

	// Writing is trimmed but never case-folded.
	if w := strings.TrimSpace(a.Writing); runeLen(w) > 10 && strings.Contains(w, " ") {
		score++
	}

	if t.affirmed(a.Copying, t.CompletionKeywords) {
		score++
	}

	return score
}

// affirmed reports whether the answer is exactly an affirmative or contains
// one of the keywords.
func (t *LocaleTable) affirmed(answer string, keywords []string) bool {
	answer = t.Normalize(answer)
	if answer == "" {
		return false
	}
	return slices.Contains(t.Affirmatives, answer) || containsAny(answer, keywords)
}
