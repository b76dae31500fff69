package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestAgeStringBands(t *testing.T) {
	birthday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		at   time.Time
		want string
	}{
		{date(2024, time.January, 1), "Newborn"},
		{date(2024, time.January, 2), "1 day old"},
		{date(2024, time.January, 4), "3 days old"},
		{date(2024, time.January, 8), "1 week old"},
		{date(2024, time.January, 22), "3 weeks old"},
		{date(2024, time.February, 29), "8 weeks old"},
		{date(2024, time.March, 2), "2 months old"},
		{date(2024, time.December, 31), "11 months old"},
		{date(2025, time.January, 1), "1 year old"},
		{date(2025, time.February, 15), "1 year, 1 month old"},
		{date(2025, time.May, 3), "1 year, 4 months old"},
		{date(2026, time.January, 1), "2 years old"},
		{date(2026, time.February, 1), "2 years, 1 month old"},
		{date(2027, time.July, 20), "3 years, 6 months old"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AgeString(birthday, tc.at), "at=%s", tc.at.Format(time.DateOnly))
	}
}

func TestAgeStringBeforeBirthday(t *testing.T) {
	birthday := date(2024, time.January, 1)
	assert.Empty(t, AgeString(birthday, date(2023, time.December, 31)))
}

func TestAgeStringIgnoresClockTime(t *testing.T) {
	birthday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	lateSameDay := time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC)
	earlyNextDay := time.Date(2024, time.January, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, "Newborn", AgeString(birthday, lateSameDay))
	assert.Equal(t, "1 day old", AgeString(birthday, earlyNextDay))
}

func TestAgeStringMonthEndBirthday(t *testing.T) {
	birthday := date(2024, time.January, 31)
	assert.Equal(t, "2 months old", AgeString(birthday, date(2024, time.April, 30)))
	assert.Equal(t, "3 months old", AgeString(birthday, date(2024, time.May, 1)))
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "June 15, 2024", DateRange(date(2024, time.June, 15), date(2024, time.June, 15)))
	assert.Equal(t, "June 10–20, 2024", DateRange(date(2024, time.June, 10), date(2024, time.June, 20)))
	assert.Equal(t, "Jun 10 – Aug 5, 2024", DateRange(date(2024, time.June, 10), date(2024, time.August, 5)))
	assert.Equal(t, "Dec 31, 2024 – Jan 2, 2025", DateRange(date(2024, time.December, 31), date(2025, time.January, 2)))
}

func TestDateRangeSwapsReversedBounds(t *testing.T) {
	assert.Equal(t, "June 10–20, 2024", DateRange(date(2024, time.June, 20), date(2024, time.June, 10)))
}

func TestSummarize(t *testing.T) {
	birthday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no timestamps", func(t *testing.T) {
		got := Summarize([]*time.Time{nil, nil}, &birthday)
		assert.Equal(t, Summary{}, got)
	})

	t.Run("single photo", func(t *testing.T) {
		got := Summarize([]*time.Time{ptr(date(2024, time.June, 15))}, nil)
		assert.Equal(t, "June 15, 2024", got.DateRange)
		assert.Empty(t, got.AgeString)
	})

	t.Run("midpoint drives age", func(t *testing.T) {
		got := Summarize([]*time.Time{
			ptr(date(2024, time.December, 1)),
			nil,
			ptr(date(2025, time.March, 1)),
			ptr(date(2025, time.January, 10)),
		}, &birthday)
		assert.Equal(t, "Dec 1, 2024 – Mar 1, 2025", got.DateRange)
		assert.Equal(t, "1 year old", got.AgeString)
	})

	t.Run("photos before birth", func(t *testing.T) {
		got := Summarize([]*time.Time{ptr(date(2023, time.June, 1))}, &birthday)
		assert.Equal(t, "June 1, 2023", got.DateRange)
		assert.Empty(t, got.AgeString)
	})
}
