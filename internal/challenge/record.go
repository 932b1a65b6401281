package challenge

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRecord = errors.New("invalid record")

// LogRecord is a single submitted exercise entry. WeekIndex is stamped once,
// when the record is created, and is never recomputed afterwards.
type LogRecord struct {
	Person     string    `json:"person"`
	Exercise   string    `json:"exercise"`
	Reps       int       `json:"reps"`
	OccurredOn time.Time `json:"occurredOn"`
	WeekIndex  int       `json:"weekIndex"`
}

// NewLogRecord creates a record for the given date and stamps its week index.
func NewLogRecord(cal Calendar, person, exercise string, reps int, occurredOn time.Time) LogRecord {
	date := DateOf(occurredOn)
	return LogRecord{
		Person:     strings.TrimSpace(person),
		Exercise:   NormalizeExercise(exercise),
		Reps:       reps,
		OccurredOn: date,
		WeekIndex:  cal.WeekOf(date),
	}
}

// NormalizeExercise lower-cases and trims an exercise key, the same way keys are
// stored in the target configuration.
func NormalizeExercise(exercise string) string {
	return strings.ToLower(strings.TrimSpace(exercise))
}

func (r LogRecord) Validate() error {
	if strings.TrimSpace(r.Person) == "" {
		return fmt.Errorf("%w: person empty", ErrInvalidRecord)
	}
	if NormalizeExercise(r.Exercise) == "" {
		return fmt.Errorf("%w: exercise empty", ErrInvalidRecord)
	}
	if r.Reps < 0 {
		return fmt.Errorf("%w: negative reps [%d]", ErrInvalidRecord, r.Reps)
	}
	if r.WeekIndex < 0 {
		return fmt.Errorf("%w: negative week index [%d]", ErrInvalidRecord, r.WeekIndex)
	}
	return nil
}

// Date returns the occurred-on date formatted as YYYY-MM-DD.
func (r LogRecord) Date() string {
	return r.OccurredOn.Format(DateLayout)
}

// RowKey identifies a record by full-row equality.
func (r LogRecord) RowKey() string {
	return fmt.Sprintf("%s|%s|%d|%s|%d", r.Person, NormalizeExercise(r.Exercise), r.Reps, r.Date(), r.WeekIndex)
}

// CurrentWeek returns the highest week index present in records, or PreBaselineWeek
// when there are none.
func CurrentWeek(records []LogRecord) int {
	current := PreBaselineWeek
	for _, r := range records {
		if r.WeekIndex > current {
			current = r.WeekIndex
		}
	}
	return current
}
