package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

var ErrUnknownLocale = errors.New("unknown locale")

// Section maxima.
const (
	MaxOrientation  = 10
	MaxRegistration = 3
	MaxAttention    = 5
	MaxRecall       = 3
	MaxLanguage     = 9
	MaxTotal        = MaxOrientation + MaxRegistration + MaxAttention + MaxRecall + MaxLanguage
)

// AnswerPayload is the raw answer sheet of one submission.
type AnswerPayload struct {
	Orientation  *OrientationAnswers  `json:"orientation"`
	Registration *RegistrationAnswers `json:"registration"`
	Attention    *AttentionAnswers    `json:"attention"`
	Recall       *RecallAnswers       `json:"recall"`
	Language     *LanguageAnswers     `json:"language"`
}

type OrientationAnswers struct {
	Year     string `json:"yearAnswer"`
	Season   string `json:"seasonAnswer"`
	Date     string `json:"dateAnswer"`
	Day      string `json:"dayAnswer"`
	Month    string `json:"monthAnswer"`
	State    string `json:"stateAnswer"`
	Country  string `json:"countryAnswer"`
	Building string `json:"hospitalAnswer"`
	Floor    string `json:"floorAnswer"`
	City     string `json:"cityAnswer"`
}

type RegistrationAnswers struct {
	WordsTyped string `json:"wordsTyped"`
}

type AttentionAnswers struct {
	UseSubtraction bool     `json:"useSubtraction"`
	Answers        []string `json:"answers"`
	SpellWorld     string   `json:"spellWorld"`
}

type RecallAnswers struct {
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
	Word3 string `json:"word3"`
}

// NamedObject is an object shown to the subject and the name they gave it.
type NamedObject struct {
	Name   string `json:"name,omitempty"`
	Answer string `json:"answer"`
}

type LanguageAnswers struct {
	Object1         NamedObject `json:"object1"`
	Object2         NamedObject `json:"object2"`
	Repetition      string      `json:"repetition"`
	RepetitionAudio AudioFlag   `json:"repetitionAudio"`
	Command         string      `json:"command"`
	Reading         string      `json:"reading"`
	Writing         string      `json:"writing"`
	Copying         string      `json:"copying"`
}

// AudioFlag records whether a repetition recording was attached. Clients send
// either a boolean or the recording itself; the content is never inspected.
type AudioFlag bool

func (a *AudioFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*a = false
	case bytes.Equal(data, []byte("true")):
		*a = true
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = s != ""
	case data[0] == '{' || data[0] == '[':
		*a = true
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*a = f != 0
	}
	return nil
}

// SectionScores holds the five sub-scores.
type SectionScores struct {
	Orientation  int `json:"orientation"`
	Registration int `json:"registration"`
	Attention    int `json:"attention"`
	Recall       int `json:"recall"`
	Language     int `json:"language"`
}

// Total sums the five sections.
func (s SectionScores) Total() int {
	return s.Orientation + s.Registration + s.Attention + s.Recall + s.Language
}

// ScoreRecord is the engine's result for one submission.
type ScoreRecord struct {
	Locale         Locale        `json:"locale"`
	SectionScores  SectionScores `json:"sectionScores"`
	TotalScore     int           `json:"totalScore"`
	Interpretation string        `json:"interpretation"`
	ReferenceTime  time.Time     `json:"referenceTime"`
}

// ClientAssertion is what the client claims it computed.
type ClientAssertion struct {
	TotalScore     *float64 `json:"totalScore"`
	Interpretation string   `json:"interpretation,omitempty"`
}

// ReconciliationOutcome compares a client assertion with the server record.
// Accepted always equals Server.
type ReconciliationOutcome struct {
	Server      ScoreRecord `json:"server"`
	ClientTotal *float64    `json:"clientTotal,omitempty"`
	Discrepancy float64     `json:"discrepancy"`
	Accepted    ScoreRecord `json:"accepted"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Discrepant reports whether a warning was raised.
func (o ReconciliationOutcome) Discrepant() bool {
	return len(o.Warnings) > 0
}
