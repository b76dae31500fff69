// Package timeline derives the human readable date range and age strings
// shown on a memory book page from photo timestamps.
package timeline

import (
	"fmt"
	"time"
)

// Summary holds the derived strings for one set of photos.
type Summary struct {
	DateRange string
	AgeString string
}

// Summarize computes the date range over every known timestamp and, when a
// birthday is given, the age at the midpoint of that range. Nil timestamps
// are ignored.
func Summarize(takenAt []*time.Time, birthday *time.Time) Summary {
	first, last, ok := bounds(takenAt)
	if !ok {
		return Summary{}
	}

	summary := Summary{DateRange: DateRange(first, last)}
	if birthday != nil && !birthday.IsZero() {
		mid := first.Add(last.Sub(first) / 2)
		summary.AgeString = AgeString(*birthday, mid)
	}
	return summary
}

func bounds(takenAt []*time.Time) (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for _, t := range takenAt {
		if t == nil || t.IsZero() {
			continue
		}
		if !found {
			first, last = *t, *t
			found = true
			continue
		}
		if t.Before(first) {
			first = *t
		}
		if t.After(last) {
			last = *t
		}
	}
	return first, last, found
}

// DateRange formats the span between first and last, collapsing the parts
// both ends share.
func DateRange(first, last time.Time) string {
	if last.Before(first) {
		first, last = last, first
	}

	switch {
	case sameDay(first, last):
		return first.Format("January 2, 2006")
	case first.Year() == last.Year() && first.Month() == last.Month():
		return fmt.Sprintf("%s %d–%d, %d", first.Month(), first.Day(), last.Day(), first.Year())
	case first.Year() == last.Year():
		return fmt.Sprintf("%s – %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
	default:
		return fmt.Sprintf("%s – %s", first.Format("Jan 2, 2006"), last.Format("Jan 2, 2006"))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AgeString renders the age of someone born on birthday at the moment at.
// Only calendar dates matter; clock time and zone offsets are ignored.
func AgeString(birthday, at time.Time) string {
	born := calendarDate(birthday)
	day := calendarDate(at)
	if day.Before(born) {
		return ""
	}

	days := int(day.Sub(born).Hours() / 24)
	switch {
	case days == 0:
		return "Newborn"
	case days < 7:
		return plural(days, "day") + " old"
	case days < 60:
		return plural(days/7, "week") + " old"
	}

	years, months := yearsAndMonths(born, day)
	switch {
	case years == 0:
		return plural(months, "month") + " old"
	case months == 0:
		return plural(years, "year") + " old"
	default:
		return plural(years, "year") + ", " + plural(months, "month") + " old"
	}
}

// calendarDate keeps the wall-clock date of t and anchors it at UTC midnight
// so that day differences are exact.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func yearsAndMonths(from, to time.Time) (int, int) {
	years := to.Year() - from.Year()
	months := int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
