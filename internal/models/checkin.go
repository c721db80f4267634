// ABOUTME: CheckIn model for periodic body-composition measurements.
// ABOUTME: BMI and BMICategory are derived from height and weight by the store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BMICategory is the WHO adult BMI band.
type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

// CheckIn is one body measurement on a calendar day.
type CheckIn struct {
	ID          uuid.UUID   `json:"id"`
	Date        time.Time   `json:"date"`
	HeightCm    float64     `json:"heightCm"`
	WeightKg    float64     `json:"weightKg"`
	WaistCm     *float64    `json:"waistCm,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
	BMI         float64     `json:"bmi"`
	BMICategory BMICategory `json:"bmiCategory"`
}

// NewCheckIn creates a check-in for the given day. The ID and BMI fields are
// filled in when the check-in is stored.
func NewCheckIn(date time.Time, heightCm, weightKg float64) *CheckIn {
	return &CheckIn{
		Date:     Day(date),
		HeightCm: heightCm,
		WeightKg: weightKg,
	}
}

// WithWaist sets the waist circumference.
func (c *CheckIn) WithWaist(cm float64) *CheckIn {
	c.WaistCm = &cm
	return c
}

// WithNotes sets notes on the check-in.
func (c *CheckIn) WithNotes(notes string) *CheckIn {
	c.Notes = &notes
	return c
}

// Validate reports every invalid input field.
func (c *CheckIn) Validate() error {
	var v checker
	v.timeSet("date", c.Date)
	v.positive("heightCm", c.HeightCm)
	v.positive("weightKg", c.WeightKg)
	if c.WaistCm != nil {
		v.positive("waistCm", *c.WaistCm)
	}
	return v.err
}

// CheckInPatch is a partial update of a CheckIn.
type CheckInPatch struct {
	Date     Field[time.Time] `json:"date,omitzero"`
	HeightCm Field[float64]   `json:"heightCm,omitzero"`
	WeightKg Field[float64]   `json:"weightKg,omitzero"`
	WaistCm  Field[float64]   `json:"waistCm,omitzero"`
	Notes    Field[string]    `json:"notes,omitzero"`
}

// TouchesBMI reports whether the patch carries an input of the BMI.
func (p CheckInPatch) TouchesBMI() bool {
	return p.HeightCm.Present() || p.WeightKg.Present()
}

// ApplyTo merges the patch into c. Derived fields are not touched.
func (p CheckInPatch) ApplyTo(c *CheckIn) error {
	var errs error
	applyRequired(&errs, "date", p.Date, &c.Date)
	applyRequired(&errs, "heightCm", p.HeightCm, &c.HeightCm)
	applyRequired(&errs, "weightKg", p.WeightKg, &c.WeightKg)
	applyOptional(p.WaistCm, &c.WaistCm)
	applyOptional(p.Notes, &c.Notes)
	c.Date = Day(c.Date)
	return errs
}
