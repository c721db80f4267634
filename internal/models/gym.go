// ABOUTME: GymSession and Exercise models for strength and cardio training.
// ABOUTME: A session owns its exercises; exercise volume is derived by the store.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkoutType is the overall character of a gym session.
type WorkoutType string

const (
	WorkoutStrength    WorkoutType = "strength"
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutMixed       WorkoutType = "mixed"
	WorkoutFlexibility WorkoutType = "flexibility"
)

// AllWorkoutTypes returns all valid workout types.
var AllWorkoutTypes = []WorkoutType{WorkoutStrength, WorkoutCardio, WorkoutMixed, WorkoutFlexibility}

// IsValidWorkoutType checks if a string is a valid workout type.
func IsValidWorkoutType(s string) bool {
	for _, wt := range AllWorkoutTypes {
		if string(wt) == s {
			return true
		}
	}
	return false
}

// CardioType is the machine or activity used for cardio.
type CardioType string

const (
	CardioTreadmill  CardioType = "treadmill"
	CardioBike       CardioType = "bike"
	CardioElliptical CardioType = "elliptical"
	CardioRowing     CardioType = "rowing"
	CardioStairs     CardioType = "stairs"
	CardioSwimming   CardioType = "swimming"
	CardioRunning    CardioType = "running"
	CardioOther      CardioType = "other"
)

// AllCardioTypes returns all valid cardio types.
var AllCardioTypes = []CardioType{
	CardioTreadmill, CardioBike, CardioElliptical, CardioRowing,
	CardioStairs, CardioSwimming, CardioRunning, CardioOther,
}

// IsValidCardioType checks if a string is a valid cardio type.
func IsValidCardioType(s string) bool {
	for _, ct := range AllCardioTypes {
		if string(ct) == s {
			return true
		}
	}
	return false
}

// DefaultIntensity is used when a session is logged without an intensity.
const DefaultIntensity = 5

// GymSession is one visit to the gym.
type GymSession struct {
	ID          uuid.UUID   `json:"id"`
	Datetime    time.Time   `json:"datetime"`
	WorkoutType WorkoutType `json:"workoutType"`
	DurationMin int         `json:"durationMin"`
	CardioType  *CardioType `json:"cardioType,omitempty"`
	CardioMin   *int        `json:"cardioMin,omitempty"`
	Intensity   int         `json:"intensity"`
	Notes       *string     `json:"notes,omitempty"`

	// Exercises is populated only when fetching a full session.
	Exercises []Exercise `json:"-"`
}

// NewGymSession creates a session starting now.
func NewGymSession(workoutType WorkoutType) *GymSession {
	return &GymSession{
		Datetime:    time.Now().UTC(),
		WorkoutType: workoutType,
		Intensity:   DefaultIntensity,
	}
}

// WithDatetime sets a custom start timestamp.
func (s *GymSession) WithDatetime(t time.Time) *GymSession {
	s.Datetime = t.UTC()
	return s
}

// WithDuration sets the duration in minutes.
func (s *GymSession) WithDuration(minutes int) *GymSession {
	s.DurationMin = minutes
	return s
}

// WithCardio records the cardio part of the session.
func (s *GymSession) WithCardio(ct CardioType, minutes int) *GymSession {
	s.CardioType = &ct
	s.CardioMin = &minutes
	return s
}

// WithIntensity sets perceived intensity on a 1-10 scale.
func (s *GymSession) WithIntensity(intensity int) *GymSession {
	s.Intensity = intensity
	return s
}

// WithNotes sets notes on the session.
func (s *GymSession) WithNotes(notes string) *GymSession {
	s.Notes = &notes
	return s
}

// Validate reports every invalid input field.
func (s *GymSession) Validate() error {
	var v checker
	v.timeSet("datetime", s.Datetime)
	v.check(IsValidWorkoutType(string(s.WorkoutType)), "workoutType %q is not one of strength, cardio, mixed, flexibility", s.WorkoutType)
	v.check(s.DurationMin >= 0, "durationMin must not be negative")
	v.check(s.Intensity >= 1 && s.Intensity <= 10, "intensity must be between 1 and 10")
	if s.CardioType != nil {
		v.check(IsValidCardioType(string(*s.CardioType)), "cardioType %q is not valid", *s.CardioType)
	}
	if s.CardioMin != nil {
		v.check(*s.CardioMin >= 0, "cardioMin must not be negative")
		v.check(s.CardioType != nil, "cardioMin requires cardioType")
	}
	return v.err
}

// GymSessionPatch is a partial update of a GymSession.
type GymSessionPatch struct {
	Datetime    Field[time.Time]   `json:"datetime,omitzero"`
	WorkoutType Field[WorkoutType] `json:"workoutType,omitzero"`
	DurationMin Field[int]         `json:"durationMin,omitzero"`
	CardioType  Field[CardioType]  `json:"cardioType,omitzero"`
	CardioMin   Field[int]         `json:"cardioMin,omitzero"`
	Intensity   Field[int]         `json:"intensity,omitzero"`
	Notes       Field[string]      `json:"notes,omitzero"`
}

// ApplyTo merges the patch into s. Clearing cardioType also clears cardioMin.
func (p GymSessionPatch) ApplyTo(s *GymSession) error {
	var errs error
	applyRequired(&errs, "datetime", p.Datetime, &s.Datetime)
	applyRequired(&errs, "workoutType", p.WorkoutType, &s.WorkoutType)
	applyRequired(&errs, "durationMin", p.DurationMin, &s.DurationMin)
	applyRequired(&errs, "intensity", p.Intensity, &s.Intensity)
	applyOptional(p.CardioType, &s.CardioType)
	applyOptional(p.CardioMin, &s.CardioMin)
	applyOptional(p.Notes, &s.Notes)
	if p.CardioType.IsNull() && !p.CardioMin.Present() {
		s.CardioMin = nil
	}
	s.Datetime = s.Datetime.UTC()
	return errs
}

// Exercise is one movement performed in a session.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"sessionId"`
	ExerciseName string    `json:"exerciseName"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	WeightKg     float64   `json:"weightKg"`
	RestSec      *int      `json:"restSec,omitempty"`
	Volume       float64   `json:"volume"`
	Photo        []byte    `json:"photo,omitempty"`
}

// NewExercise creates an exercise belonging to sessionID.
func NewExercise(sessionID uuid.UUID, name string, sets, reps int, weightKg float64) *Exercise {
	return &Exercise{
		SessionID:    sessionID,
		ExerciseName: strings.TrimSpace(name),
		Sets:         sets,
		Reps:         reps,
		WeightKg:     weightKg,
	}
}

// WithRest sets rest between sets in seconds.
func (e *Exercise) WithRest(seconds int) *Exercise {
	e.RestSec = &seconds
	return e
}

// WithPhoto attaches an image of the machine or setup.
func (e *Exercise) WithPhoto(photo []byte) *Exercise {
	e.Photo = photo
	return e
}

// Validate reports every invalid input field. Session existence is checked
// by the store.
func (e *Exercise) Validate() error {
	var v checker
	v.check(e.SessionID != uuid.Nil, "sessionId is required")
	v.notBlank("exerciseName", e.ExerciseName)
	v.check(e.Sets >= 0, "sets must not be negative")
	v.check(e.Reps >= 0, "reps must not be negative")
	v.nonNegative("weightKg", e.WeightKg)
	if e.RestSec != nil {
		v.check(*e.RestSec >= 0, "restSec must not be negative")
	}
	return v.err
}

// ExercisePatch is a partial update of an Exercise.
type ExercisePatch struct {
	ExerciseName Field[string]  `json:"exerciseName,omitzero"`
	Sets         Field[int]     `json:"sets,omitzero"`
	Reps         Field[int]     `json:"reps,omitzero"`
	WeightKg     Field[float64] `json:"weightKg,omitzero"`
	RestSec      Field[int]     `json:"restSec,omitzero"`
	Photo        Field[[]byte]  `json:"photo,omitzero"`
}

// TouchesVolume reports whether the patch carries an input of the volume.
func (p ExercisePatch) TouchesVolume() bool {
	return p.Sets.Present() || p.Reps.Present() || p.WeightKg.Present()
}

// ApplyTo merges the patch into e. Cleared sets, reps or weight count as 0.
func (p ExercisePatch) ApplyTo(e *Exercise) error {
	var errs error
	applyRequired(&errs, "exerciseName", p.ExerciseName, &e.ExerciseName)
	if p.Sets.Present() {
		e.Sets, _ = p.Sets.Get()
	}
	if p.Reps.Present() {
		e.Reps, _ = p.Reps.Get()
	}
	if p.WeightKg.Present() {
		e.WeightKg, _ = p.WeightKg.Get()
	}
	applyOptional(p.RestSec, &e.RestSec)
	if p.Photo.Present() {
		e.Photo, _ = p.Photo.Get()
	}
	e.ExerciseName = strings.TrimSpace(e.ExerciseName)
	return errs
}
