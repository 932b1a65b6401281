package challenge

import "sort"

type ExerciseTotal struct {
	Exercise string `json:"exercise"`
	Total    int    `json:"total"`
}

type WeekTotal struct {
	Week  int `json:"week"`
	Total int `json:"total"`
}

// Profile is the all-time summary of one person.
type Profile struct {
	Person       string          `json:"person"`
	Totals       []ExerciseTotal `json:"totals"`
	WeeklyTotals []WeekTotal     `json:"weeklyTotals"`
	TotalReps    int             `json:"totalReps"`
}

// BuildProfile sums all valid records of person, per exercise (sorted by exercise key)
// and per week (sorted by week index). Unlike Evaluate, unconfigured exercises are kept.
func BuildProfile(records []LogRecord, person string) Profile {
	byExercise := make(map[string]int)
	byWeek := make(map[int]int)
	profile := Profile{Person: person}

	for _, r := range records {
		if r.Person != person || r.Validate() != nil {
			continue
		}
		exercise := NormalizeExercise(r.Exercise)
		byExercise[exercise] = addReps(byExercise[exercise], r.Reps)
		byWeek[r.WeekIndex] = addReps(byWeek[r.WeekIndex], r.Reps)
		profile.TotalReps = addReps(profile.TotalReps, r.Reps)
	}

	profile.Totals = make([]ExerciseTotal, 0, len(byExercise))
	for exercise, total := range byExercise {
		profile.Totals = append(profile.Totals, ExerciseTotal{Exercise: exercise, Total: total})
	}
	sort.Slice(profile.Totals, func(i, j int) bool {
		return profile.Totals[i].Exercise < profile.Totals[j].Exercise
	})

	profile.WeeklyTotals = make([]WeekTotal, 0, len(byWeek))
	for week, total := range byWeek {
		profile.WeeklyTotals = append(profile.WeeklyTotals, WeekTotal{Week: week, Total: total})
	}
	sort.Slice(profile.WeeklyTotals, func(i, j int) bool {
		return profile.WeeklyTotals[i].Week < profile.WeeklyTotals[j].Week
	})

	return profile
}
