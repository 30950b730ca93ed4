package scoring

// ScoreRegistration counts the target words matched by at least one typed
// token. Each target word counts once.
func (t *LocaleTable) ScoreRegistration(a *RegistrationAnswers) int {
	if a == nil {
		return 0
	}
	tokens := t.Tokenize(a.WordsTyped)

	score := 0
	for _, target := range t.TargetWords {
		for _, tok := range tokens {
			if mutualContains(tok, target) {
				score++
				break
			}
		}
	}
	return score
}

// ScoreRecall awards a point for each recalled field that matches any of the
// target words. Fields are not paired with a particular word.
func (t *LocaleTable) ScoreRecall(a *RecallAnswers) int {
	if a == nil {
		return 0
	}
	score := 0
	for _, w := range []string{a.Word1, a.Word2, a.Word3} {
		if t.recalled(t.Normalize(w)) {
			score++
		}
	}
	return score
}

func (t *LocaleTable) recalled(word string) bool {
	if word == "" {
		return false
	}
	for _, target := range t.TargetWords {
		if mutualContains(word, target) {
			return true
		}
	}
	return false
}
