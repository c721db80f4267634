// ABOUTME: Dashboard summary computed from the facade's cached snapshots.
// ABOUTME: Reflects the state as of the last refresh, like every other facade read.
package state

import (
	"time"

	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/tracker"
)

// WeeklyWindow is the trailing window the dashboard counts sessions over.
const WeeklyWindow = 7 * 24 * time.Hour

// Dashboard is the at-a-glance summary.
type Dashboard struct {
	CurrentWeight  *float64               `json:"currentWeight,omitempty"`
	WeightChange   *float64               `json:"weightChange,omitempty"`
	BMI            *float64               `json:"bmi,omitempty"`
	BMICategory    models.BMICategory     `json:"bmiCategory,omitempty"`
	Today          metrics.Totals         `json:"today"`
	WeeklyGymCount int                    `json:"weeklyGymCount"`
	GymStreak      int                    `json:"gymStreak"`
	HabitScore     int                    `json:"habitScore"`
	Plateau        bool                   `json:"plateau"`
	ActiveGoals    []tracker.GoalProgress `json:"activeGoals"`
	NewPRs         int                    `json:"newPRs"`
}

// Dashboard summarises the cached snapshots. Call RefreshAll first for
// current numbers.
func (f *Facade) Dashboard() Dashboard {
	now := f.svc.Now()
	var d Dashboard

	checkIns := f.CheckIns()
	if len(checkIns) > 0 {
		latest := checkIns[0]
		weight, bmi := latest.WeightKg, latest.BMI
		d.CurrentWeight = &weight
		d.BMI = &bmi
		d.BMICategory = latest.BMICategory
		if len(checkIns) > 1 {
			change := latest.WeightKg - checkIns[1].WeightKg
			d.WeightChange = &change
		}
	}
	d.Plateau = metrics.DetectPlateau(values(checkIns))

	d.Today = metrics.DailyTotals(values(f.Meals()), now)

	sessions := values(f.GymSessions())
	d.WeeklyGymCount = metrics.WeeklyGymCount(sessions, now.Add(-WeeklyWindow))
	d.GymStreak = metrics.GymStreak(sessions, now)

	if h := f.TodayHabit(); h != nil {
		d.HabitScore = h.Score
	}

	var active []*models.Goal
	for _, g := range f.Goals() {
		if g.Status == models.GoalActive {
			active = append(active, g)
		}
	}
	d.ActiveGoals = tracker.WithProgress(active)

	for _, p := range f.PRs() {
		if p.IsNew {
			d.NewPRs++
		}
	}
	return d
}

func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}
