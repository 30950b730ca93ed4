package scoring

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Locale selects the word lists, keyword sets and labels used to score a submission.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleUrdu    Locale = "ur"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Seasons holds a locale's name for each of the four season bands.
type Seasons struct {
	Spring string `yaml:"spring"`
	Summer string `yaml:"summer"`
	Autumn string `yaml:"autumn"`
	Winter string `yaml:"winter"`
}

// All returns the four canonical season names.
func (s Seasons) All() []string {
	return []string{s.Spring, s.Summer, s.Autumn, s.Winter}
}

// Labels are the two interpretation labels of a locale.
type Labels struct {
	Normal   string `yaml:"normal"`
	Impaired string `yaml:"impaired"`
}

// LocaleTable is the immutable data that parameterizes every section scorer.
type LocaleTable struct {
	Code               Locale   `yaml:"code"`
	Name               string   `yaml:"name"`
	CaseFold           bool     `yaml:"case_fold"`
	Seasons            Seasons  `yaml:"seasons"`
	SeasonAliases      []string `yaml:"season_aliases"`
	Weekdays           []string `yaml:"weekdays"`
	Months             []string `yaml:"months"`
	AcceptedCountries  []string `yaml:"accepted_countries"`
	FloorKeywords      []string `yaml:"floor_keywords"`
	FloorDigits        []string `yaml:"floor_digits"`
	TargetWords        []string `yaml:"target_words"`
	SpellingTarget     string   `yaml:"spelling_target"`
	RepetitionSentence string   `yaml:"repetition_sentence"`
	Affirmatives       []string `yaml:"affirmatives"`
	CompletionKeywords []string `yaml:"completion_keywords"`
	ReadingKeywords    []string `yaml:"reading_keywords"`
	Labels             Labels   `yaml:"labels"`
	LabelAliases       []string `yaml:"label_aliases"`
}

var tables map[Locale]*LocaleTable

func init() {
	loaded, err := loadTables()
	if err != nil {
		panic(err)
	}
	tables = loaded
}

func loadTables() (map[Locale]*LocaleTable, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	out := make(map[Locale]*LocaleTable, len(entries))
	for _, e := range entries {
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}

		var t LocaleTable
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		if err := t.check(); err != nil {
			return nil, fmt.Errorf("locale file %s: %w", e.Name(), err)
		}
		out[t.Code] = &t
	}
	return out, nil
}

func (t *LocaleTable) check() error {
	switch {
	case t.Code == "":
		return fmt.Errorf("missing code")
	case len(t.Weekdays) != 7:
		return fmt.Errorf("expected 7 weekdays, got %d", len(t.Weekdays))
	case len(t.Months) != 12:
		return fmt.Errorf("expected 12 months, got %d", len(t.Months))
	case len(t.TargetWords) != 3:
		return fmt.Errorf("expected 3 target words, got %d", len(t.TargetWords))
	case t.SpellingTarget == "":
		return fmt.Errorf("missing spelling target")
	case t.Labels.Normal == "" || t.Labels.Impaired == "":
		return fmt.Errorf("missing interpretation labels")
	}
	return nil
}

// Table returns the data for a locale.
func Table(l Locale) (*LocaleTable, error) {
	t, ok := tables[l]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, string(l))
	}
	return t, nil
}

// ParseLocale accepts the short codes and the display names used by the
// sharing records ("English", "Urdu").
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return LocaleEnglish, nil
	case "ur", "urdu":
		return LocaleUrdu, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
}

// Locales lists the supported locales.
func Locales() []Locale {
	return []Locale{LocaleEnglish, LocaleUrdu}
}

// DisplayName returns the human readable name of the locale.
func (l Locale) DisplayName() string {
	if t, ok := tables[l]; ok {
		return t.Name
	}
	return string(l)
}

// ValidLabel reports whether label is one of the locale's interpretation
// labels or a historical alias of one.
func (t *LocaleTable) ValidLabel(label string) bool {
	if label == t.Labels.Normal || label == t.Labels.Impaired {
		return true
	}
	return slices.Contains(t.LabelAliases, label)
}
