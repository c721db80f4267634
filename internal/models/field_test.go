// ABOUTME: Tests for the generic patch Field and JSON presence handling.
// ABOUTME: Covers absent, null and value states and patch application.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFieldStates(t *testing.T) {
	var absent Field[int]
	if absent.Present() || absent.IsNull() {
		t.Error("zero Field should be absent")
	}
	if absent.Ptr() != nil {
		t.Error("absent Ptr should be nil")
	}

	null := Null[int]()
	if !null.Present() || !null.IsNull() {
		t.Error("Null should be present and null")
	}
	if _, ok := null.Get(); ok {
		t.Error("Null Get should report no value")
	}

	v := Value(7)
	got, ok := v.Get()
	if !ok || got != 7 {
		t.Errorf("Get = %d, %v; want 7, true", got, ok)
	}
	if p := v.Ptr(); p == nil || *p != 7 {
		t.Error("Ptr should point at 7")
	}
}

func TestFieldUnmarshalDistinguishesNullFromAbsent(t *testing.T) {
	var p CheckInPatch
	if err := json.Unmarshal([]byte(`{"weightKg": 80.5, "waistCm": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if w, ok := p.WeightKg.Get(); !ok || w != 80.5 {
		t.Errorf("WeightKg = %v, %v; want 80.5", w, ok)
	}
	if !p.WaistCm.IsNull() {
		t.Error("WaistCm should be present-null")
	}
	if p.HeightCm.Present() || p.Notes.Present() {
		t.Error("fields missing from the document should be absent")
	}
	if !p.TouchesBMI() {
		t.Error("weight change should touch BMI")
	}
}

func TestFieldMarshalOmitsAbsent(t *testing.T) {
	p := MealPatch{Calories: Value(500.0), Notes: Null[string]()}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"calories":500,"notes":null}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestCheckInPatchApply(t *testing.T) {
	c := NewCheckIn(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 180, 80).
		WithWaist(90).WithNotes("morning")

	p := CheckInPatch{WaistCm: Null[float64](), WeightKg: Value(79.0)}
	if err := p.ApplyTo(c); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if c.WaistCm != nil {
		t.Error("waist should be cleared")
	}
	if c.WeightKg != 79 {
		t.Errorf("WeightKg = %v, want 79", c.WeightKg)
	}
	if c.Notes == nil || *c.Notes != "morning" {
		t.Error("notes should be untouched")
	}
}

func TestPatchRejectsClearingRequiredFields(t *testing.T) {
	c := NewCheckIn(time.Now(), 180, 80)
	err := CheckInPatch{HeightCm: Null[float64](), Date: Null[time.Time]()}.ApplyTo(c)
	if err == nil {
		t.Fatal("expected error clearing required fields")
	}
	if c.HeightCm != 180 {
		t.Error("rejected field must keep its value")
	}
}

func TestExercisePatchTouchesVolume(t *testing.T) {
	tests := []struct {
		name  string
		patch ExercisePatch
		want  bool
	}{
		{"empty", ExercisePatch{}, false},
		{"name only", ExercisePatch{ExerciseName: Value("squat")}, false},
		{"sets", ExercisePatch{Sets: Value(4)}, true},
		{"weight null", ExercisePatch{WeightKg: Null[float64]()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.TouchesVolume(); got != tt.want {
				t.Errorf("TouchesVolume = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGymSessionPatchClearingCardioClearsMinutes(t *testing.T) {
	s := NewGymSession(WorkoutMixed).WithCardio(CardioRowing, 15)
	if err := (GymSessionPatch{CardioType: Null[CardioType]()}).ApplyTo(s); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if s.CardioType != nil || s.CardioMin != nil {
		t.Error("cardio type and minutes should both be cleared")
	}
}
