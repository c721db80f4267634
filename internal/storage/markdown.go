// ABOUTME: Markdown report export: one table per collection, readable but not importable.
// ABOUTME: An optional since bound drops records dated before it.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
)

// ExportMarkdown renders every collection as Markdown tables. When since is
// set, dated records before it are left out; goals and settings are always
// included.
func ExportMarkdown(ctx context.Context, repo Repository, since *time.Time) (string, error) {
	data, err := repo.Export(ctx)
	if err != nil {
		return "", err
	}
	keep := func(t time.Time) bool {
		return since == nil || !t.Before(*since)
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Journey Export - %s\n\n", now.Format(models.DayLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	var checkIns []*models.CheckIn
	for _, c := range data.CheckIns {
		if keep(c.Date) {
			checkIns = append(checkIns, c)
		}
	}
	if len(checkIns) > 0 {
		sb.WriteString("## Check-ins\n\n")
		sb.WriteString("| Date | Weight | Height | Waist | BMI | Notes |\n")
		sb.WriteString("|------|--------|--------|-------|-----|-------|\n")
		for _, c := range checkIns {
			waist := ""
			if c.WaistCm != nil {
				waist = fmt.Sprintf("%.1f cm", *c.WaistCm)
			}
			sb.WriteString(fmt.Sprintf("| %s | %.1f kg | %.1f cm | %s | %.1f (%s) | %s |\n",
				c.Date.Format(models.DayLayout), c.WeightKg, c.HeightCm, waist,
				c.BMI, c.BMICategory, cell(c.Notes)))
		}
		sb.WriteString("\n")
	}

	var meals []*models.Meal
	for _, m := range data.Meals {
		if keep(m.Datetime) {
			meals = append(meals, m)
		}
	}
	if len(meals) > 0 {
		sb.WriteString("## Meals\n\n")
		sb.WriteString("| Date | Type | Calories | Protein | Carbs | Fat | Notes |\n")
		sb.WriteString("|------|------|----------|---------|-------|-----|-------|\n")
		for _, m := range meals {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | %.1f g | %.1f g | %.1f g | %s |\n",
				m.Datetime.Format("2006-01-02 15:04"), m.MealType,
				m.Calories, m.Protein, m.Carbs, m.Fat, cell(m.Notes)))
		}
		sb.WriteString("\n")
	}

	bySession := make(map[string][]*models.Exercise)
	for _, e := range data.Exercises {
		key := e.SessionID.String()
		bySession[key] = append(bySession[key], e)
	}
	wroteHeader := false
	for _, s := range data.GymSessions {
		if !keep(s.Datetime) {
			continue
		}
		if !wroteHeader {
			sb.WriteString("## Gym Sessions\n\n")
			wroteHeader = true
		}
		sb.WriteString(fmt.Sprintf("### %s %s (%d min, intensity %d)\n\n",
			s.Datetime.Format("2006-01-02 15:04"), s.WorkoutType, s.DurationMin, s.Intensity))
		if s.CardioType != nil {
			minutes := 0
			if s.CardioMin != nil {
				minutes = *s.CardioMin
			}
			sb.WriteString(fmt.Sprintf("Cardio: %s, %d min\n\n", *s.CardioType, minutes))
		}
		if s.Notes != nil && *s.Notes != "" {
			sb.WriteString(*s.Notes + "\n\n")
		}
		exercises := bySession[s.ID.String()]
		if len(exercises) == 0 {
			continue
		}
		sb.WriteString("| Exercise | Sets | Reps | Weight | Volume |\n")
		sb.WriteString("|----------|------|------|--------|--------|\n")
		for _, e := range exercises {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f kg | %.0f |\n",
				e.ExerciseName, e.Sets, e.Reps, e.WeightKg, e.Volume))
		}
		sb.WriteString("\n")
	}

	var habits []*models.Habit
	for _, h := range data.Habits {
		if keep(h.Date) {
			habits = append(habits, h)
		}
	}
	if len(habits) > 0 {
		sb.WriteString("## Habits\n\n")
		sb.WriteString("| Date | Water | Steps | Creatine | Stretching | Sleep | Score |\n")
		sb.WriteString("|------|-------|-------|----------|------------|-------|-------|\n")
		for _, h := range habits {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d |\n",
				h.Date.Format(models.DayLayout),
				optional(h.WaterMl, "%d ml"), optional(h.Steps, "%d"),
				optional(h.Creatine, "%t"), optional(h.Stretching, "%t"),
				optional(h.SleepHours, "%.1f h"), h.Score))
		}
		sb.WriteString("\n")
	}

	if len(data.Goals) > 0 {
		sb.WriteString("## Goals\n\n")
		sb.WriteString("| Goal | Current | Target | Progress | Status | Deadline |\n")
		sb.WriteString("|------|---------|--------|----------|--------|----------|\n")
		for _, g := range data.Goals {
			deadline := ""
			if g.Deadline != nil {
				deadline = g.Deadline.Format(models.DayLayout)
			}
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %.0f%% | %s | %s |\n",
				g.Type, g.CurrentValue, g.TargetValue, metrics.GoalProgress(*g), g.Status, deadline))
		}
		sb.WriteString("\n")
	}

	var prs []*models.PR
	for _, p := range data.PRs {
		if keep(p.Date) {
			prs = append(prs, p)
		}
	}
	if len(prs) > 0 {
		sb.WriteString("## Personal Records\n\n")
		sb.WriteString("| Date | Exercise | Type | Value | Notes |\n")
		sb.WriteString("|------|----------|------|-------|-------|\n")
		for _, p := range prs {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %s |\n",
				p.Date.Format(models.DayLayout), p.ExerciseName, p.PRType, p.Value, cell(p.Notes)))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// cell makes free text safe for a single table cell.
func cell(s *string) string {
	if s == nil {
		return ""
	}
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(*s)
}

func optional[T any](v *T, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
