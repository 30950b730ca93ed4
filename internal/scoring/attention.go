package scoring

import (
	"strconv"
	"strings"
)

// SerialSevens is the expected answer sequence for 100 minus 7, five times.
var SerialSevens = [5]int{93, 86, 79, 72, 65}

// ScoreAttention scores either the serial-sevens task or the backwards
// spelling task, depending on the mode flag.
func (t *LocaleTable) ScoreAttention(a *AttentionAnswers) int {
	if a == nil {
		return 0
	}
	if a.UseSubtraction {
		return scoreSubtraction(a.Answers)
	}
	return t.scoreSpelling(a.SpellWorld)
}

func scoreSubtraction(answers []string) int {
	score := 0
	for i, ans := range answers {
		if i >= len(SerialSevens) {
			break
		}
		if n, ok := leadingInt(ans); ok && n == SerialSevens[i] {
			score++
		}
	}
	return score
}

// scoreSpelling gives 5 for an exact match, otherwise one point per
// character that matches the target at the same position.
func (t *LocaleTable) scoreSpelling(answer string) int {
	answer = t.Normalize(answer)
	if answer == t.SpellingTarget {
		return MaxAttention
	}

	got, want := []rune(answer), []rune(t.SpellingTarget)
	score := 0
	for i := 0; i < min(len(got), len(want)); i++ {
		if got[i] == want[i] {
			score++
		}
	}
	return min(score, MaxAttention)
}

// leadingInt parses an optional sign followed by leading decimal digits,
// ignoring anything after them. "93abc" yields 93; "abc" yields false.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
