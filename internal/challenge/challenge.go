package challenge

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownPerson   = errors.New("unknown person")
	ErrUnknownExercise = errors.New("unknown exercise")
)

// Challenge is the static setup of a challenge: who takes part, from which
// baseline date, and what the weekly targets are.
type Challenge struct {
	Calendar Calendar
	Targets  *TargetConfig
	Roster   []string
}

// Person returns the roster entry matching name, ignoring case and surrounding spaces.
func (c Challenge) Person(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, p := range c.Roster {
		if strings.EqualFold(p, name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: [%s]", ErrUnknownPerson, name)
}

// Exercise returns the configured target matching an exercise key or display name.
func (c Challenge) Exercise(keyOrName string) (Target, error) {
	t, ok := c.Targets.Lookup(keyOrName)
	if !ok {
		return Target{}, fmt.Errorf("%w: [%s]", ErrUnknownExercise, strings.TrimSpace(keyOrName))
	}
	return t, nil
}

// NewRecord validates a submission and turns it into a record dated today,
// in the challenge time zone, with its week index stamped.
func (c Challenge) NewRecord(person, exercise string, reps int, now time.Time) (LogRecord, error) {
	rosterPerson, err := c.Person(person)
	if err != nil {
		return LogRecord{}, err
	}
	target, err := c.Exercise(exercise)
	if err != nil {
		return LogRecord{}, err
	}
	if reps < 1 {
		return LogRecord{}, fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidRecord, reps)
	}

	return NewLogRecord(c.Calendar, rosterPerson, target.Key, reps, c.Calendar.Today(now)), nil
}
