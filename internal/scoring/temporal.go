package scoring

import "time"

// Reference is the answer key for the time-dependent orientation questions.
type Reference struct {
	Year     int
	Season   string
	Weekday  string
	Month    string
	Weekdays []string
	Months   []string
	Seasons  []string
}

// Resolve computes the expected orientation values at now, read in loc.
// A nil loc means UTC.
func (t *LocaleTable) Resolve(now time.Time, loc *time.Location) Reference {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	monthIdx := int(now.Month()) - 1

	return Reference{
		Year:     now.Year(),
		Season:   t.seasonFor(monthIdx),
		Weekday:  t.Weekdays[int(now.Weekday())],
		Month:    t.Months[monthIdx],
		Weekdays: t.Weekdays,
		Months:   t.Months,
		Seasons:  t.Seasons.All(),
	}
}

// seasonFor maps a zero-based month index onto a season band.
func (t *LocaleTable) seasonFor(monthIdx int) string {
	switch {
	case monthIdx >= 2 && monthIdx <= 4:
		return t.Seasons.Spring
	case monthIdx >= 5 && monthIdx <= 7:
		return t.Seasons.Summer
	case monthIdx >= 8 && monthIdx <= 10:
		return t.Seasons.Autumn
	default:
		return t.Seasons.Winter
	}
}
