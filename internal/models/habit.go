// ABOUTME: Habit model: one record per calendar day of tracked daily habits.
// ABOUTME: Unset fields stay nil so the score covers only what was logged.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Habit is the daily habit log. Date is the natural key.
type Habit struct {
	ID         uuid.UUID `json:"id"`
	Date       time.Time `json:"date"`
	WaterMl    *int      `json:"waterMl,omitempty"`
	Steps      *int      `json:"steps,omitempty"`
	Creatine   *bool     `json:"creatine,omitempty"`
	Stretching *bool     `json:"stretching,omitempty"`
	SleepHours *float64  `json:"sleepHours,omitempty"`
	Score      int       `json:"score"`
}

// NewHabit creates an empty habit log for the given day.
func NewHabit(date time.Time) *Habit {
	return &Habit{Date: Day(date)}
}

// WithWater records water drunk in millilitres.
func (h *Habit) WithWater(ml int) *Habit {
	h.WaterMl = &ml
	return h
}

// WithSteps records the step count.
func (h *Habit) WithSteps(steps int) *Habit {
	h.Steps = &steps
	return h
}

// WithCreatine records whether creatine was taken.
func (h *Habit) WithCreatine(taken bool) *Habit {
	h.Creatine = &taken
	return h
}

// WithStretching records whether stretching was done.
func (h *Habit) WithStretching(done bool) *Habit {
	h.Stretching = &done
	return h
}

// WithSleep records hours slept.
func (h *Habit) WithSleep(hours float64) *Habit {
	h.SleepHours = &hours
	return h
}

// Validate reports every invalid input field.
func (h *Habit) Validate() error {
	var v checker
	v.timeSet("date", h.Date)
	if h.WaterMl != nil {
		v.check(*h.WaterMl >= 0, "waterMl must not be negative")
	}
	if h.Steps != nil {
		v.check(*h.Steps >= 0, "steps must not be negative")
	}
	if h.SleepHours != nil && v.finite("sleepHours", *h.SleepHours) {
		v.check(*h.SleepHours >= 0 && *h.SleepHours <= 24, "sleepHours must be between 0 and 24")
	}
	return v.err
}

// HabitPatch is a partial update of a Habit.
type HabitPatch struct {
	Date       Field[time.Time] `json:"date,omitzero"`
	WaterMl    Field[int]       `json:"waterMl,omitzero"`
	Steps      Field[int]       `json:"steps,omitzero"`
	Creatine   Field[bool]      `json:"creatine,omitzero"`
	Stretching Field[bool]      `json:"stretching,omitzero"`
	SleepHours Field[float64]   `json:"sleepHours,omitzero"`
}

// TouchesScore reports whether the patch carries an input of the score.
func (p HabitPatch) TouchesScore() bool {
	return p.WaterMl.Present() || p.Steps.Present() || p.Creatine.Present() ||
		p.Stretching.Present() || p.SleepHours.Present()
}

// ApplyTo merges the patch into h.
func (p HabitPatch) ApplyTo(h *Habit) error {
	var errs error
	applyRequired(&errs, "date", p.Date, &h.Date)
	applyOptional(p.WaterMl, &h.WaterMl)
	applyOptional(p.Steps, &h.Steps)
	applyOptional(p.Creatine, &h.Creatine)
	applyOptional(p.Stretching, &h.Stretching)
	applyOptional(p.SleepHours, &h.SleepHours)
	h.Date = Day(h.Date)
	return errs
}
