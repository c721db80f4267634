// ABOUTME: Pure metric functions: BMI, exercise volume, habit score and PR comparison.
// ABOUTME: No I/O; the storage layer calls these whenever a derived field needs computing.
package metrics

import (
	"math"

	"github.com/harperreed/journey/internal/models"
)

// Habit thresholds counted as "met" by ComputeHabitScore.
const (
	WaterTargetMl   = 2000
	StepsTarget     = 8000
	SleepTargetHour = 7.0
)

// PlateauWindow is how many recent check-ins DetectPlateau looks at.
const (
	PlateauWindow     = 4
	PlateauMinRecords = 3
	PlateauMaxSpread  = 0.3
)

// ComputeBMI returns weight / height² rounded to one decimal, and its category.
func ComputeBMI(heightCm, weightKg float64) (float64, models.BMICategory) {
	m := heightCm / 100
	bmi := math.Round(weightKg/(m*m)*10) / 10
	return bmi, BMICategoryFor(bmi)
}

// BMICategoryFor classifies a BMI value. Lower bounds are inclusive.
func BMICategoryFor(bmi float64) models.BMICategory {
	switch {
	case bmi < 18.5:
		return models.BMIUnderweight
	case bmi < 25:
		return models.BMINormal
	case bmi < 30:
		return models.BMIOverweight
	default:
		return models.BMIObese
	}
}

// ComputeVolume is sets × reps × weight. A missing input is passed as 0.
func ComputeVolume(sets, reps int, weightKg float64) float64 {
	return float64(sets) * float64(reps) * weightKg
}

// ComputeHabitScore is the percentage of logged habit fields that met their
// target. Fields that were never logged are not counted against the day.
func ComputeHabitScore(h models.Habit) int {
	var met, total int
	score := func(present, ok bool) {
		if !present {
			return
		}
		total++
		if ok {
			met++
		}
	}

	score(h.WaterMl != nil, h.WaterMl != nil && *h.WaterMl >= WaterTargetMl)
	score(h.Steps != nil, h.Steps != nil && *h.Steps >= StepsTarget)
	score(h.Creatine != nil, h.Creatine != nil && *h.Creatine)
	score(h.Stretching != nil, h.Stretching != nil && *h.Stretching)
	score(h.SleepHours != nil, h.SleepHours != nil && *h.SleepHours >= SleepTargetHour)

	if total == 0 {
		return 0
	}
	return int(math.Round(float64(met) / float64(total) * 100))
}

// IsNewPR reports whether candidate beats every existing record. existing must
// already be narrowed to one exercise and PR type.
func IsNewPR(existing []models.PR, candidate float64) bool {
	for _, pr := range existing {
		if candidate <= pr.Value {
			return false
		}
	}
	return true
}

// GoalProgress is current/target as a percentage, capped at 100. A target of
// zero or less yields 0.
func GoalProgress(g models.Goal) float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return math.Max(0, math.Min(g.CurrentValue/g.TargetValue*100, 100))
}
