// ABOUTME: Backend-independent record preparation shared by SQLite and Badger.
// ABOUTME: Validates input, assigns IDs, computes derived fields and encodes times.
package storage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
)

// timeLayout is fixed-width so text comparison matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// normalizePrefix lowercases an ID prefix and rejects anything that cannot
// be part of a UUID string.
func normalizePrefix(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 36 {
		return "", false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && r != '-' {
			return "", false
		}
	}
	return s, true
}

func isFullID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

// pickMatch turns prefix matches into a single ID.
func pickMatch(op, idOrPrefix string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", apperr.NotFound(op, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", apperr.New(apperr.KindNotFound, op,
			fmt.Errorf("ambiguous prefix %q: matches multiple records", idOrPrefix))
	}
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// checkFinite rejects derived values that overflowed; they cannot be
// stored or exported as JSON.
func checkFinite(field string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%s: inputs produce a non-finite value", field)
	}
	return nil
}

func deriveCheckIn(c *models.CheckIn) error {
	c.BMI, c.BMICategory = metrics.ComputeBMI(c.HeightCm, c.WeightKg)
	return checkFinite("bmi", c.BMI)
}

func deriveExercise(e *models.Exercise) error {
	e.Volume = metrics.ComputeVolume(e.Sets, e.Reps, e.WeightKg)
	return checkFinite("volume", e.Volume)
}

func deriveHabit(h *models.Habit) {
	h.Score = metrics.ComputeHabitScore(*h)
}

// The prepare* functions normalise and validate a record before it is first
// written, then fill in its ID and derived fields.

func prepareCheckIn(op string, c *models.CheckIn) error {
	c.Date = models.Day(c.Date)
	if err := c.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	if err := deriveCheckIn(c); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&c.ID)
	return nil
}

func prepareMeal(op string, m *models.Meal) error {
	m.Datetime = m.Datetime.UTC()
	if err := m.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&m.ID)
	return nil
}

func prepareGymSession(op string, s *models.GymSession) error {
	s.Datetime = s.Datetime.UTC()
	if err := s.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&s.ID)
	return nil
}

func prepareExercise(op string, e *models.Exercise) error {
	e.ExerciseName = strings.TrimSpace(e.ExerciseName)
	if err := e.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	if err := deriveExercise(e); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&e.ID)
	return nil
}

func prepareHabit(op string, h *models.Habit) error {
	h.Date = models.Day(h.Date)
	if err := h.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&h.ID)
	deriveHabit(h)
	return nil
}

func prepareGoal(op string, g *models.Goal) error {
	g.Type = strings.TrimSpace(g.Type)
	if g.Status == "" {
		g.Status = models.GoalActive
	}
	if g.Deadline != nil {
		d := models.Day(*g.Deadline)
		g.Deadline = &d
	}
	if err := g.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&g.ID)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	return nil
}

func preparePR(op string, p *models.PR) error {
	p.ExerciseName = strings.TrimSpace(p.ExerciseName)
	p.PRType = strings.TrimSpace(p.PRType)
	p.Date = p.Date.UTC()
	if err := p.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	assignID(&p.ID)
	p.IsNew = true
	return nil
}

func prepareSetting(op, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperr.Validation(op, fmt.Errorf("key is required"))
	}
	return key, nil
}

// The patch* functions merge an update into the stored record, validate the
// result, and recompute a derived field only when one of its inputs is part
// of the update.

func patchCheckIn(op string, c *models.CheckIn, p models.CheckInPatch) error {
	if err := p.ApplyTo(c); err != nil {
		return apperr.Validation(op, err)
	}
	if err := c.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	if p.TouchesBMI() {
		if err := deriveCheckIn(c); err != nil {
			return apperr.Validation(op, err)
		}
	}
	return nil
}

func patchMeal(op string, m *models.Meal, p models.MealPatch) error {
	if err := p.ApplyTo(m); err != nil {
		return apperr.Validation(op, err)
	}
	if err := m.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	return nil
}

func patchGymSession(op string, s *models.GymSession, p models.GymSessionPatch) error {
	if err := p.ApplyTo(s); err != nil {
		return apperr.Validation(op, err)
	}
	if err := s.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	return nil
}

func patchExercise(op string, e *models.Exercise, p models.ExercisePatch) error {
	if err := p.ApplyTo(e); err != nil {
		return apperr.Validation(op, err)
	}
	if err := e.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	if p.TouchesVolume() {
		if err := deriveExercise(e); err != nil {
			return apperr.Validation(op, err)
		}
	}
	return nil
}

func patchHabit(op string, h *models.Habit, p models.HabitPatch) error {
	if err := p.ApplyTo(h); err != nil {
		return apperr.Validation(op, err)
	}
	if err := h.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	if p.TouchesScore() {
		deriveHabit(h)
	}
	return nil
}

func patchGoal(op string, g *models.Goal, p models.GoalPatch) error {
	if err := p.ApplyTo(g); err != nil {
		return apperr.Validation(op, err)
	}
	if err := g.Validate(); err != nil {
		return apperr.Validation(op, err)
	}
	return nil
}
