// ABOUTME: Aggregations that reduce many records to one derived value.
// ABOUTME: Plateau detection, daily nutrition totals, weekly gym count and streaks.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/harperreed/journey/internal/models"
)

// DetectPlateau reports a weight stall: the most recent PlateauWindow
// check-ins spread no more than PlateauMaxSpread kg. With fewer than
// PlateauMinRecords check-ins it returns false.
func DetectPlateau(checkIns []models.CheckIn) bool {
	if len(checkIns) < PlateauMinRecords {
		return false
	}

	recent := make([]models.CheckIn, len(checkIns))
	copy(recent, checkIns)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > PlateauWindow {
		recent = recent[:PlateauWindow]
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range recent {
		lo = math.Min(lo, c.WeightKg)
		hi = math.Max(hi, c.WeightKg)
	}
	// Round away float noise so 80.3-80.0 counts as 0.3.
	spread := math.Round((hi-lo)*1e9) / 1e9
	return spread <= PlateauMaxSpread
}

// Totals is the nutrition summed over a set of meals.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	WaterMl  int     `json:"waterMl"`
	Meals    int     `json:"meals"`
}

// DailyTotals sums every meal eaten on the UTC calendar day containing day.
func DailyTotals(meals []models.Meal, day time.Time) Totals {
	start := models.Day(day)
	end := start.AddDate(0, 0, 1)

	var t Totals
	for _, m := range meals {
		if m.Datetime.Before(start) || !m.Datetime.Before(end) {
			continue
		}
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
		if m.WaterMl != nil {
			t.WaterMl += *m.WaterMl
		}
		t.Meals++
	}
	return t
}

// WeeklyGymCount counts sessions in [weekStart, weekStart+7 days).
func WeeklyGymCount(sessions []models.GymSession, weekStart time.Time) int {
	end := weekStart.AddDate(0, 0, 7)
	n := 0
	for _, s := range sessions {
		if !s.Datetime.Before(weekStart) && s.Datetime.Before(end) {
			n++
		}
	}
	return n
}

// WeekStart returns midnight UTC of the most recent first day of the week at
// or before t.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	d := models.Day(t)
	back := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDate(0, 0, -back)
}

// GymStreak counts consecutive training days ending today or yesterday.
// Several sessions on one day count once.
func GymStreak(sessions []models.GymSession, now time.Time) int {
	days := make([]time.Time, 0, len(sessions))
	seen := make(map[time.Time]bool, len(sessions))
	for _, s := range sessions {
		d := models.Day(s.Datetime)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	cursor := models.Day(now)
	streak := 0
	for _, d := range days {
		if d.After(cursor) {
			// Sessions dated in the future don't extend the streak.
			continue
		}
		if models.DaysBetween(d, cursor) > 1 {
			break
		}
		streak++
		cursor = d
	}
	return streak
}
