package challenge

import "math"

// ExerciseStatus is the progress of one exercise within a week.
type ExerciseStatus struct {
	RepsDone  int     `json:"repsDone"`
	Target    int     `json:"target"`
	Completed bool    `json:"completed"`
	Progress  float64 `json:"progress"`
}

// WeekStatus is derived on every render and never persisted.
type WeekStatus struct {
	Person        string                    `json:"person"`
	Week          int                       `json:"week"`
	PerExercise   map[string]ExerciseStatus `json:"perExercise"`
	WeekCompleted bool                      `json:"weekCompleted"`
	// Skipped is the number of invalid records left out of the sums.
	Skipped int `json:"skipped"`
}

// ExerciseProgress is an ExerciseStatus with its display metadata attached.
type ExerciseProgress struct {
	ExerciseStatus
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
}

// Evaluate computes the week status of person in the given week.
// Every configured exercise is reported, also those without records. Records of
// exercises that are not configured are ignored. Invalid records are counted in
// Skipped and never abort the evaluation.
func Evaluate(records []LogRecord, person string, week int, config *TargetConfig) WeekStatus {
	status := WeekStatus{
		Person:        person,
		Week:          week,
		PerExercise:   make(map[string]ExerciseStatus, config.Len()),
		WeekCompleted: true,
	}

	repsByExercise := make(map[string]int)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			status.Skipped++
			continue
		}
		if r.Person != person || r.WeekIndex != week {
			continue
		}
		key := NormalizeExercise(r.Exercise)
		repsByExercise[key] = addReps(repsByExercise[key], r.Reps)
	}

	for _, key := range config.ordered {
		target := config.targets[key].WeeklyTarget
		repsDone := repsByExercise[key]

		progress := float64(repsDone) / float64(target)
		progress = math.Max(0, math.Min(progress, 1))

		exStatus := ExerciseStatus{
			RepsDone:  repsDone,
			Target:    target,
			Completed: repsDone >= target,
			Progress:  progress,
		}
		status.PerExercise[key] = exStatus
		status.WeekCompleted = status.WeekCompleted && exStatus.Completed
	}

	return status
}

// addReps sums two non-negative rep counts, saturating at math.MaxInt.
func addReps(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Ordered returns the per-exercise statuses sorted by display order.
func (s WeekStatus) Ordered(config *TargetConfig) []ExerciseProgress {
	ordered := make([]ExerciseProgress, 0, len(s.PerExercise))
	for _, t := range config.Targets() {
		exStatus, ok := s.PerExercise[t.Key]
		if !ok {
			continue
		}
		ordered = append(ordered, ExerciseProgress{
			ExerciseStatus: exStatus,
			Key:            t.Key,
			DisplayName:    t.DisplayName,
		})
	}
	return ordered
}
