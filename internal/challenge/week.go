package challenge

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in storage rows, forms and query params.
const DateLayout = "2006-01-02"

// PreBaselineWeek is the week index every date strictly before the baseline collapses to.
// The baseline week itself is week 1.
const PreBaselineWeek = 0

const secondsPerDay = 24 * 60 * 60

// DateOf drops the time of day from t, keeping the calendar date as seen in t's location.
// The result is midnight UTC, so two dates can be subtracted without DST surprises.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", s, err)
	}
	return d, nil
}

// WeekIndex maps target to a 1-based week bucket counted in consecutive 7-day windows
// starting at baseline. Dates before the baseline map to PreBaselineWeek.
func WeekIndex(target, baseline time.Time) int {
	deltaDays := daysBetween(DateOf(baseline), DateOf(target))
	if deltaDays < 0 {
		return PreBaselineWeek
	}
	return deltaDays/7 + 1
}

// daysBetween counts whole days between two DateOf values. Unix seconds are used
// instead of time.Duration, which saturates after ~292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// Calendar binds the baseline date to the time zone the challenge is run in,
// so "today" is the same calendar date for every participant.
type Calendar struct {
	baseline time.Time
	location *time.Location
}

func NewCalendar(baseline time.Time, location *time.Location) Calendar {
	if location == nil {
		location = time.UTC
	}
	return Calendar{
		baseline: DateOf(baseline),
		location: location,
	}
}

func (c Calendar) Baseline() time.Time {
	return c.baseline
}

func (c Calendar) Location() *time.Location {
	return c.location
}

// Today returns the calendar date of now in the challenge time zone.
func (c Calendar) Today(now time.Time) time.Time {
	return DateOf(now.In(c.location))
}

// WeekOf returns the week index of the given calendar date.
func (c Calendar) WeekOf(date time.Time) int {
	return WeekIndex(date, c.baseline)
}

// WeekStart returns the first calendar date of the given week.
// PreBaselineWeek has no start date, so ok is false for it.
func (c Calendar) WeekStart(week int) (_ time.Time, ok bool) {
	if week <= PreBaselineWeek {
		return time.Time{}, false
	}
	return c.baseline.AddDate(0, 0, (week-1)*7), true
}
