package scoring

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NamingVerdict is the feedback given while an object name is typed. It never
// changes the score.
type NamingVerdict string

const (
	NamingCorrect   NamingVerdict = "correct"
	NamingIncorrect NamingVerdict = "incorrect"
	NamingUnknown   NamingVerdict = "unknown"
)

// catalog maps each object shown during the naming task to the names accepted
// for it in English, Urdu and romanized Urdu.
var catalog = map[string][]string{
	"bread":  {"bread", "روٹی", "roti", "chapati", "چپاتی"},
	"apple":  {"apple", "سیب", "seb", "ایپل"},
	"spoon":  {"spoon", "چمچہ", "chamcha", "چمچ"},
	"key":    {"key", "چابی", "chabi", "کنجی"},
	"watch":  {"watch", "گھڑی", "ghari", "clock", "گھڑیال"},
	"mobile": {"mobile", "فون", "phone", "موبائل"},
	"car":    {"car", "گاڑی", "gaari", "کار"},
	"flower": {"flower", "پھول", "phool", "گل"},
}

// Objects lists the catalog keys in a stable order.
func Objects() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CheckObjectName reports whether answer is an accepted name for object.
func CheckObjectName(object, answer string) NamingVerdict {
	fold := cases.Lower(language.Und)
	names, ok := catalog[fold.String(strings.TrimSpace(object))]
	if !ok {
		return NamingUnknown
	}
	answer = fold.String(strings.TrimSpace(answer))
	if answer == "" {
		return NamingIncorrect
	}
	if slices.Contains(names, answer) {
		return NamingCorrect
	}
	return NamingIncorrect
}

// ObjectFeedback is the naming verdict for both objects of a payload.
type ObjectFeedback struct {
	Object1 NamingVerdict `json:"object1"`
	Object2 NamingVerdict `json:"object2"`
}

// NamingFeedback checks both object answers of a language section.
func NamingFeedback(a *LanguageAnswers) ObjectFeedback {
	if a == nil {
		return ObjectFeedback{Object1: NamingUnknown, Object2: NamingUnknown}
	}
	return ObjectFeedback{
		Object1: CheckObjectName(a.Object1.Name, a.Object1.Answer),
		Object2: CheckObjectName(a.Object2.Name, a.Object2.Answer),
	}
}
