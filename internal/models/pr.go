// ABOUTME: PR (personal record) model. Every detected record is kept as history.
// ABOUTME: IsNew marks records the user has not acknowledged yet.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PRTypeMaxWeight is the PR type recorded automatically when logging exercises.
const PRTypeMaxWeight = "max_weight"

// PR is one personal-record event for an exercise and metric type.
type PR struct {
	ID           uuid.UUID `json:"id"`
	ExerciseName string    `json:"exerciseName"`
	PRType       string    `json:"prType"`
	Value        float64   `json:"value"`
	Date         time.Time `json:"date"`
	Notes        *string   `json:"notes,omitempty"`
	IsNew        bool      `json:"isNew"`
}

// NewPR creates a fresh record dated now.
func NewPR(exerciseName, prType string, value float64) *PR {
	return &PR{
		ExerciseName: strings.TrimSpace(exerciseName),
		PRType:       strings.TrimSpace(prType),
		Value:        value,
		Date:         time.Now().UTC(),
		IsNew:        true,
	}
}

// WithDate sets when the record was set.
func (p *PR) WithDate(t time.Time) *PR {
	p.Date = t.UTC()
	return p
}

// WithNotes sets notes on the record.
func (p *PR) WithNotes(notes string) *PR {
	p.Notes = &notes
	return p
}

// Validate reports every invalid input field.
func (p *PR) Validate() error {
	var v checker
	v.notBlank("exerciseName", p.ExerciseName)
	v.notBlank("prType", p.PRType)
	v.finite("value", p.Value)
	v.timeSet("date", p.Date)
	return v.err
}
