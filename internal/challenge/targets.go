package challenge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid target config")

// Target is the weekly goal for one exercise, plus how to show it.
type Target struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	WeeklyTarget int    `json:"weeklyTarget"`
	DisplayOrder int    `json:"displayOrder"`
}

// TargetConfig is the immutable set of exercise targets. It is validated once,
// on creation, and shared read-only afterwards.
type TargetConfig struct {
	targets map[string]Target
	ordered []string
}

func NewTargetConfig(targets ...Target) (*TargetConfig, error) {
	cfg := &TargetConfig{
		targets: make(map[string]Target, len(targets)),
		ordered: make([]string, 0, len(targets)),
	}

	orders := make(map[int]string, len(targets))
	for _, t := range targets {
		t.Key = NormalizeExercise(t.Key)
		if t.Key == "" {
			return nil, fmt.Errorf("%w: exercise key empty", ErrInvalidConfig)
		}
		if _, exists := cfg.targets[t.Key]; exists {
			return nil, fmt.Errorf("%w: duplicate exercise [%s]", ErrInvalidConfig, t.Key)
		}
		if t.WeeklyTarget <= 0 {
			return nil, fmt.Errorf("%w: exercise [%s] weekly target must be positive, got %d", ErrInvalidConfig, t.Key, t.WeeklyTarget)
		}
		if other, exists := orders[t.DisplayOrder]; exists {
			return nil, fmt.Errorf("%w: exercises [%s] and [%s] share display order %d", ErrInvalidConfig, other, t.Key, t.DisplayOrder)
		}
		if strings.TrimSpace(t.DisplayName) == "" {
			t.DisplayName = t.Key
		}

		orders[t.DisplayOrder] = t.Key
		cfg.targets[t.Key] = t
		cfg.ordered = append(cfg.ordered, t.Key)
	}

	sort.Slice(cfg.ordered, func(i, j int) bool {
		return cfg.targets[cfg.ordered[i]].DisplayOrder < cfg.targets[cfg.ordered[j]].DisplayOrder
	})

	return cfg, nil
}

// DefaultTargets is the "1000 challenge": 400 squats, 300 push-ups, 200 dips and 100 pull-ups weekly.
func DefaultTargets() []Target {
	return []Target{
		{Key: "squat", DisplayName: "Squats", WeeklyTarget: 400, DisplayOrder: 1},
		{Key: "push-up", DisplayName: "Push-ups", WeeklyTarget: 300, DisplayOrder: 2},
		{Key: "dip", DisplayName: "Dips", WeeklyTarget: 200, DisplayOrder: 3},
		{Key: "pull-up", DisplayName: "Pull-ups", WeeklyTarget: 100, DisplayOrder: 4},
	}
}

// Keys returns the exercise keys sorted by display order.
func (c *TargetConfig) Keys() []string {
	keys := make([]string, len(c.ordered))
	copy(keys, c.ordered)
	return keys
}

// Targets returns all targets sorted by display order.
func (c *TargetConfig) Targets() []Target {
	targets := make([]Target, 0, len(c.ordered))
	for _, key := range c.ordered {
		targets = append(targets, c.targets[key])
	}
	return targets
}

func (c *TargetConfig) Get(key string) (Target, bool) {
	t, ok := c.targets[NormalizeExercise(key)]
	return t, ok
}

// Lookup finds a target by its key or by its display name, ignoring case.
func (c *TargetConfig) Lookup(keyOrName string) (Target, bool) {
	if t, ok := c.Get(keyOrName); ok {
		return t, true
	}
	name := strings.TrimSpace(keyOrName)
	for _, key := range c.ordered {
		if strings.EqualFold(c.targets[key].DisplayName, name) {
			return c.targets[key], true
		}
	}
	return Target{}, false
}

func (c *TargetConfig) Len() int {
	return len(c.ordered)
}

// TotalWeeklyReps is the sum of all weekly targets.
func (c *TargetConfig) TotalWeeklyReps() int {
	total := 0
	for _, t := range c.targets {
		total += t.WeeklyTarget
	}
	return total
}
