package scoring

import (
	"slices"
	"strconv"
)

// ScoreOrientation awards one point per orientation answer. The season, day
// and month questions accept any canonical name, not only the expected one,
// and the location questions accept any answer longer than two characters.
func (t *LocaleTable) ScoreOrientation(a *OrientationAnswers, ref Reference) int {
	if a == nil {
		return 0
	}
	score := 0
	point := func(ok bool) {
		if ok {
			score++
		}
	}

	year := t.Normalize(a.Year)
	point(year != "" && (year == strconv.Itoa(ref.Year) ||
		year == strconv.Itoa(ref.Year-1) ||
		year == strconv.Itoa(ref.Year+1)))

	season := t.Normalize(a.Season)
	point(season != "" && (season == ref.Season ||
		slices.Contains(ref.Seasons, season) ||
		slices.Contains(t.SeasonAliases, season)))

	point(t.Normalize(a.Date) != "")

	day := t.Normalize(a.Day)
	point(day != "" && (day == ref.Weekday || slices.Contains(ref.Weekdays, day)))

	month := t.Normalize(a.Month)
	point(month != "" && (month == ref.Month || slices.Contains(ref.Months, month)))

	point(longerThan(t.Normalize(a.State), 2))

	country := t.Normalize(a.Country)
	point(slices.Contains(t.AcceptedCountries, country) || longerThan(country, 2))

	point(longerThan(t.Normalize(a.Building), 2))

	floor := t.Normalize(a.Floor)
	point(floor != "" && (containsAny(floor, t.FloorKeywords) || containsAny(floor, t.FloorDigits)))

	point(longerThan(t.Normalize(a.City), 2))

	return score
}
