// Package scoring turns the free-text answers of a cognitive screening
// questionnaire into section scores, a 30 point total and an interpretation.
//
// Everything here is pure. The reference time is always passed in, so an old
// submission can be re-scored against the moment it was first scored.
package scoring

import "time"

// Engine scores answer sheets. The zero value reads reference times in UTC.
type Engine struct {
	location *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone used to derive the expected weekday, month
// and season from the reference time.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.location = loc
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{location: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the record for a payload at the reference time now.
func (e *Engine) Score(p AnswerPayload, locale Locale, now time.Time) (ScoreRecord, error) {
	t, err := Table(locale)
	if err != nil {
		return ScoreRecord{}, err
	}

	ref := t.Resolve(now, e.location)
	sections := SectionScores{
		Orientation:  t.ScoreOrientation(p.Orientation, ref),
		Registration: t.ScoreRegistration(p.Registration),
		Attention:    t.ScoreAttention(p.Attention),
		Recall:       t.ScoreRecall(p.Recall),
		Language:     t.ScoreLanguage(p.Language),
	}
	total := sections.Total()

	return ScoreRecord{
		Locale:         locale,
		SectionScores:  sections,
		TotalScore:     total,
		Interpretation: t.Interpret(total),
		ReferenceTime:  now.UTC(),
	}, nil
}

// Evaluate scores the payload and reconciles the result with what the client
// asserted.
func (e *Engine) Evaluate(p AnswerPayload, locale Locale, now time.Time, client ClientAssertion) (ReconciliationOutcome, error) {
	record, err := e.Score(p, locale, now)
	if err != nil {
		return ReconciliationOutcome{}, err
	}
	return Reconcile(record, client), nil
}
