// ABOUTME: Goal model: a free-text target with current progress and status.
// ABOUTME: CreatedAt is set once when the goal is first stored.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// AllGoalStatuses returns all valid goal statuses.
var AllGoalStatuses = []GoalStatus{GoalActive, GoalCompleted, GoalPaused}

// IsValidGoalStatus checks if a string is a valid goal status.
func IsValidGoalStatus(s string) bool {
	for _, gs := range AllGoalStatuses {
		if string(gs) == s {
			return true
		}
	}
	return false
}

// Goal is something the user is working towards, e.g. "weight" at 75.
type Goal struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Status       GoalStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NewGoal creates an active goal.
func NewGoal(goalType string, target, current float64) *Goal {
	return &Goal{
		Type:         strings.TrimSpace(goalType),
		TargetValue:  target,
		CurrentValue: current,
		Status:       GoalActive,
	}
}

// WithDeadline sets the day the goal should be reached by.
func (g *Goal) WithDeadline(day time.Time) *Goal {
	d := Day(day)
	g.Deadline = &d
	return g
}

// WithStatus overrides the initial status.
func (g *Goal) WithStatus(status GoalStatus) *Goal {
	g.Status = status
	return g
}

// Validate reports every invalid input field.
func (g *Goal) Validate() error {
	var v checker
	v.notBlank("type", g.Type)
	v.finite("targetValue", g.TargetValue)
	v.finite("currentValue", g.CurrentValue)
	v.check(IsValidGoalStatus(string(g.Status)), "status %q is not one of active, completed, paused", g.Status)
	return v.err
}

// GoalPatch is a partial update of a Goal. CreatedAt is not updatable.
type GoalPatch struct {
	Type         Field[string]     `json:"type,omitzero"`
	TargetValue  Field[float64]    `json:"targetValue,omitzero"`
	CurrentValue Field[float64]    `json:"currentValue,omitzero"`
	Deadline     Field[time.Time]  `json:"deadline,omitzero"`
	Status       Field[GoalStatus] `json:"status,omitzero"`
}

// ApplyTo merges the patch into g.
func (p GoalPatch) ApplyTo(g *Goal) error {
	var errs error
	applyRequired(&errs, "type", p.Type, &g.Type)
	applyRequired(&errs, "targetValue", p.TargetValue, &g.TargetValue)
	applyRequired(&errs, "currentValue", p.CurrentValue, &g.CurrentValue)
	applyRequired(&errs, "status", p.Status, &g.Status)
	applyOptional(p.Deadline, &g.Deadline)
	if g.Deadline != nil {
		d := Day(*g.Deadline)
		g.Deadline = &d
	}
	g.Type = strings.TrimSpace(g.Type)
	return errs
}
