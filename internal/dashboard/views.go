package dashboard

import (
	"fmt"

	"github.com/2beens/weeklyreps/internal/challenge"
)

type PersonStanding struct {
	Person    string                       `json:"person"`
	Status    challenge.WeekStatus         `json:"status"`
	Exercises []challenge.ExerciseProgress `json:"exercises"`
}

type ExerciseTotalView struct {
	Exercise    string `json:"exercise"`
	DisplayName string `json:"displayName"`
	Total       int    `json:"total"`
}

type ProfileView struct {
	Person       string                `json:"person"`
	TotalReps    int                   `json:"totalReps"`
	Totals       []ExerciseTotalView   `json:"totals"`
	WeeklyTotals []challenge.WeekTotal `json:"weeklyTotals"`
}

// standings evaluates the week for everyone on the roster, in roster order.
// Malformed stored rows never became records, they are added to Skipped here.
func (handler *Handler) standings(records []challenge.LogRecord, malformed, week int) []PersonStanding {
	standings := make([]PersonStanding, 0, len(handler.challenge.Roster))
	for _, person := range handler.challenge.Roster {
		status := handler.evaluate(records, malformed, person, week)
		standings = append(standings, PersonStanding{
			Person:    person,
			Status:    status,
			Exercises: status.Ordered(handler.challenge.Targets),
		})
	}
	return standings
}

func (handler *Handler) evaluate(records []challenge.LogRecord, malformed int, person string, week int) challenge.WeekStatus {
	status := challenge.Evaluate(records, person, week, handler.challenge.Targets)
	status.Skipped += malformed
	return status
}

// profiles builds the all-time summary of everyone on the roster. Exercises that
// are no longer configured keep their raw key as display name.
func (handler *Handler) profiles(records []challenge.LogRecord) []ProfileView {
	views := make([]ProfileView, 0, len(handler.challenge.Roster))
	for _, person := range handler.challenge.Roster {
		profile := challenge.BuildProfile(records, person)
		view := ProfileView{
			Person:       profile.Person,
			TotalReps:    profile.TotalReps,
			Totals:       make([]ExerciseTotalView, 0, len(profile.Totals)),
			WeeklyTotals: profile.WeeklyTotals,
		}
		for _, t := range profile.Totals {
			displayName := t.Exercise
			if target, ok := handler.challenge.Targets.Get(t.Exercise); ok {
				displayName = target.DisplayName
			}
			view.Totals = append(view.Totals, ExerciseTotalView{
				Exercise:    t.Exercise,
				DisplayName: displayName,
				Total:       t.Total,
			})
		}
		views = append(views, view)
	}
	return views
}

func (handler *Handler) weekStart(week int) string {
	start, ok := handler.challenge.Calendar.WeekStart(week)
	if !ok {
		return ""
	}
	return start.Format(challenge.DateLayout)
}

func (handler *Handler) displayName(exerciseKey string) string {
	if target, ok := handler.challenge.Targets.Get(exerciseKey); ok {
		return target.DisplayName
	}
	return exerciseKey
}

// savedMessage is the confirmation shown after a successful submission.
func (handler *Handler) savedMessage(r challenge.LogRecord) string {
	return fmt.Sprintf("Saved: %s – %d x %s on %s", r.Person, r.Reps, handler.displayName(r.Exercise), r.Date())
}
