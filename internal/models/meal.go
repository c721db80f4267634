// ABOUTME: Meal model with macro-nutrients and water intake.
// ABOUTME: Meals have no derived fields.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MealType is the slot a meal was eaten in.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// AllMealTypes returns all valid meal types.
var AllMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// IsValidMealType checks if a string is a valid meal type.
func IsValidMealType(s string) bool {
	for _, mt := range AllMealTypes {
		if string(mt) == s {
			return true
		}
	}
	return false
}

// Meal is a single logged meal.
type Meal struct {
	ID       uuid.UUID `json:"id"`
	Datetime time.Time `json:"datetime"`
	MealType MealType  `json:"mealType"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
	WaterMl  *int      `json:"waterMl,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Photo    []byte    `json:"photo,omitempty"`
}

// NewMeal creates a meal eaten now.
func NewMeal(mealType MealType) *Meal {
	return &Meal{
		Datetime: time.Now().UTC(),
		MealType: mealType,
	}
}

// WithDatetime sets when the meal was eaten.
func (m *Meal) WithDatetime(t time.Time) *Meal {
	m.Datetime = t.UTC()
	return m
}

// WithMacros sets calories and grams of protein, carbs and fat.
func (m *Meal) WithMacros(calories, protein, carbs, fat float64) *Meal {
	m.Calories = calories
	m.Protein = protein
	m.Carbs = carbs
	m.Fat = fat
	return m
}

// WithWater sets water drunk with the meal.
func (m *Meal) WithWater(ml int) *Meal {
	m.WaterMl = &ml
	return m
}

// WithNotes sets notes on the meal.
func (m *Meal) WithNotes(notes string) *Meal {
	m.Notes = &notes
	return m
}

// WithPhoto attaches an image.
func (m *Meal) WithPhoto(photo []byte) *Meal {
	m.Photo = photo
	return m
}

// Validate reports every invalid input field.
func (m *Meal) Validate() error {
	var v checker
	v.timeSet("datetime", m.Datetime)
	v.check(IsValidMealType(string(m.MealType)), "mealType %q is not one of breakfast, lunch, dinner, snack", m.MealType)
	v.nonNegative("calories", m.Calories)
	v.nonNegative("protein", m.Protein)
	v.nonNegative("carbs", m.Carbs)
	v.nonNegative("fat", m.Fat)
	if m.WaterMl != nil {
		v.check(*m.WaterMl >= 0, "waterMl must not be negative")
	}
	return v.err
}

// MealPatch is a partial update of a Meal.
type MealPatch struct {
	Datetime Field[time.Time] `json:"datetime,omitzero"`
	MealType Field[MealType]  `json:"mealType,omitzero"`
	Calories Field[float64]   `json:"calories,omitzero"`
	Protein  Field[float64]   `json:"protein,omitzero"`
	Carbs    Field[float64]   `json:"carbs,omitzero"`
	Fat      Field[float64]   `json:"fat,omitzero"`
	WaterMl  Field[int]       `json:"waterMl,omitzero"`
	Notes    Field[string]    `json:"notes,omitzero"`
	Photo    Field[[]byte]    `json:"photo,omitzero"`
}

// ApplyTo merges the patch into m. Cleared macros fall back to 0.
func (p MealPatch) ApplyTo(m *Meal) error {
	var errs error
	applyRequired(&errs, "datetime", p.Datetime, &m.Datetime)
	applyRequired(&errs, "mealType", p.MealType, &m.MealType)
	for _, f := range []struct {
		field Field[float64]
		dst   *float64
	}{
		{p.Calories, &m.Calories},
		{p.Protein, &m.Protein},
		{p.Carbs, &m.Carbs},
		{p.Fat, &m.Fat},
	} {
		if f.field.Present() {
			v, _ := f.field.Get()
			*f.dst = v
		}
	}
	applyOptional(p.WaterMl, &m.WaterMl)
	applyOptional(p.Notes, &m.Notes)
	if p.Photo.Present() {
		m.Photo, _ = p.Photo.Get()
	}
	m.Datetime = m.Datetime.UTC()
	return errs
}
