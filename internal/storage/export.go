// ABOUTME: Export document format and its JSON, YAML and import-validation helpers.
// ABOUTME: The JSON document round-trips losslessly through Export and Import.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// ExportData is the full transportable document: one list per collection
// plus the export timestamp. A nil list on import leaves that collection
// untouched.
type ExportData struct {
	Version     string               `json:"version"`
	Tool        string               `json:"tool"`
	ExportDate  time.Time            `json:"exportDate"`
	CheckIns    []*models.CheckIn    `json:"checkIns"`
	Meals       []*models.Meal       `json:"meals"`
	GymSessions []*models.GymSession `json:"gymSessions"`
	Exercises   []*models.Exercise   `json:"exercises"`
	Habits      []*models.Habit      `json:"habits"`
	Goals       []*models.Goal       `json:"goals"`
	PRs         []*models.PR         `json:"prs"`
	Settings    []models.Setting     `json:"settings"`
}

func newExportData() *ExportData {
	return &ExportData{
		Version:    ExportVersion,
		Tool:       "journey",
		ExportDate: time.Now().UTC(),
	}
}

// Counts returns the number of records per collection.
func (e *ExportData) Counts() map[string]int {
	return map[string]int{
		"checkIns":    len(e.CheckIns),
		"meals":       len(e.Meals),
		"gymSessions": len(e.GymSessions),
		"exercises":   len(e.Exercises),
		"habits":      len(e.Habits),
		"goals":       len(e.Goals),
		"prs":         len(e.PRs),
		"settings":    len(e.Settings),
	}
}

// ExportJSON exports all data as indented JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// DecodeExport parses a JSON export document. Unknown keys are ignored.
// Any malformed content is an import format error.
func DecodeExport(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperr.ImportFormat("decode export", err)
	}
	return &data, nil
}

// ImportJSON decodes raw and imports it into repo in a single transaction.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) error {
	data, err := DecodeExport(raw)
	if err != nil {
		return err
	}
	return repo.Import(ctx, data)
}

// normalizeImport validates every record and recomputes derived fields so
// nothing inconsistent reaches storage. Records keep their identifiers.
func normalizeImport(data *ExportData) error {
	if data == nil {
		return apperr.ImportFormat("import", fmt.Errorf("empty document"))
	}

	var errs error
	bad := func(collection string, i int, err error) {
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s[%d]: %w", collection, i, err))
		}
	}
	// usable reports whether a record can be checked further.
	usable := func(collection string, i int, isNil bool, id func() uuid.UUID) bool {
		if isNil {
			bad(collection, i, fmt.Errorf("null record"))
			return false
		}
		if id() == uuid.Nil {
			bad(collection, i, fmt.Errorf("id is required"))
			return false
		}
		return true
	}

	for i, c := range data.CheckIns {
		if !usable("checkIns", i, c == nil, func() uuid.UUID { return c.ID }) {
			continue
		}
		c.Date = models.Day(c.Date)
		if err := c.Validate(); err != nil {
			bad("checkIns", i, err)
		} else {
			bad("checkIns", i, deriveCheckIn(c))
		}
	}
	for i, m := range data.Meals {
		if !usable("meals", i, m == nil, func() uuid.UUID { return m.ID }) {
			continue
		}
		m.Datetime = m.Datetime.UTC()
		bad("meals", i, m.Validate())
	}
	for i, s := range data.GymSessions {
		if !usable("gymSessions", i, s == nil, func() uuid.UUID { return s.ID }) {
			continue
		}
		s.Datetime = s.Datetime.UTC()
		bad("gymSessions", i, s.Validate())
	}
	for i, e := range data.Exercises {
		if !usable("exercises", i, e == nil, func() uuid.UUID { return e.ID }) {
			continue
		}
		if err := e.Validate(); err != nil {
			bad("exercises", i, err)
		} else {
			bad("exercises", i, deriveExercise(e))
		}
	}
	days := make(map[time.Time]int)
	for i, h := range data.Habits {
		if !usable("habits", i, h == nil, func() uuid.UUID { return h.ID }) {
			continue
		}
		h.Date = models.Day(h.Date)
		bad("habits", i, h.Validate())
		if prev, dup := days[h.Date]; dup {
			bad("habits", i, fmt.Errorf("date %s duplicates habits[%d]", h.Date.Format(models.DayLayout), prev))
		}
		days[h.Date] = i
		deriveHabit(h)
	}
	for i, g := range data.Goals {
		if !usable("goals", i, g == nil, func() uuid.UUID { return g.ID }) {
			continue
		}
		if g.Status == "" {
			g.Status = models.GoalActive
		}
		if g.Deadline != nil {
			d := models.Day(*g.Deadline)
			g.Deadline = &d
		}
		bad("goals", i, g.Validate())
		if g.CreatedAt.IsZero() {
			bad("goals", i, fmt.Errorf("createdAt is required"))
		}
		g.CreatedAt = g.CreatedAt.UTC()
	}
	for i, p := range data.PRs {
		if !usable("prs", i, p == nil, func() uuid.UUID { return p.ID }) {
			continue
		}
		p.Date = p.Date.UTC()
		bad("prs", i, p.Validate())
	}
	for i, s := range data.Settings {
		if s.Key == "" {
			bad("settings", i, fmt.Errorf("key is required"))
		}
	}

	return apperr.ImportFormat("import", errs)
}

// ExportYAML exports all data as YAML grouped for reading, with exercises
// nested under their sessions. It is not an import format.
func ExportYAML(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.Export(ctx)
	if err != nil {
		return nil, err
	}

	bySession := make(map[string][]yamlExercise)
	for _, e := range data.Exercises {
		ye := yamlExercise{
			ID:       shortID(e.ID.String()),
			Name:     e.ExerciseName,
			Sets:     e.Sets,
			Reps:     e.Reps,
			WeightKg: e.WeightKg,
			Volume:   e.Volume,
		}
		if e.RestSec != nil {
			ye.RestSec = *e.RestSec
		}
		key := e.SessionID.String()
		bySession[key] = append(bySession[key], ye)
	}

	doc := yamlDocument{
		Version:    data.Version,
		ExportDate: data.ExportDate.Format(time.RFC3339),
		Tool:       data.Tool,
		Settings:   make(map[string]string, len(data.Settings)),
	}

	for _, c := range data.CheckIns {
		doc.CheckIns = append(doc.CheckIns, yamlCheckIn{
			ID:          shortID(c.ID.String()),
			Date:        c.Date.Format(models.DayLayout),
			HeightCm:    c.HeightCm,
			WeightKg:    c.WeightKg,
			WaistCm:     c.WaistCm,
			BMI:         c.BMI,
			BMICategory: string(c.BMICategory),
			Notes:       deref(c.Notes),
		})
	}
	for _, m := range data.Meals {
		doc.Meals = append(doc.Meals, yamlMeal{
			ID:       shortID(m.ID.String()),
			Datetime: m.Datetime.Format(time.RFC3339),
			Type:     string(m.MealType),
			Calories: m.Calories,
			Protein:  m.Protein,
			Carbs:    m.Carbs,
			Fat:      m.Fat,
			WaterMl:  m.WaterMl,
			Notes:    deref(m.Notes),
		})
	}
	for _, s := range data.GymSessions {
		ys := yamlSession{
			ID:          shortID(s.ID.String()),
			Datetime:    s.Datetime.Format(time.RFC3339),
			Type:        string(s.WorkoutType),
			DurationMin: s.DurationMin,
			Intensity:   s.Intensity,
			CardioMin:   s.CardioMin,
			Notes:       deref(s.Notes),
			Exercises:   bySession[s.ID.String()],
		}
		if s.CardioType != nil {
			ys.CardioType = string(*s.CardioType)
		}
		doc.GymSessions = append(doc.GymSessions, ys)
	}
	for _, h := range data.Habits {
		doc.Habits = append(doc.Habits, yamlHabit{
			ID:         shortID(h.ID.String()),
			Date:       h.Date.Format(models.DayLayout),
			WaterMl:    h.WaterMl,
			Steps:      h.Steps,
			Creatine:   h.Creatine,
			Stretching: h.Stretching,
			SleepHours: h.SleepHours,
			Score:      h.Score,
		})
	}
	for _, g := range data.Goals {
		yg := yamlGoal{
			ID:      shortID(g.ID.String()),
			Type:    g.Type,
			Target:  g.TargetValue,
			Current: g.CurrentValue,
			Status:  string(g.Status),
			Created: g.CreatedAt.Format(time.RFC3339),
		}
		if g.Deadline != nil {
			yg.Deadline = g.Deadline.Format(models.DayLayout)
		}
		doc.Goals = append(doc.Goals, yg)
	}
	for _, p := range data.PRs {
		doc.PRs = append(doc.PRs, yamlPR{
			ID:       shortID(p.ID.String()),
			Exercise: p.ExerciseName,
			Type:     p.PRType,
			Value:    p.Value,
			Date:     p.Date.Format(time.RFC3339),
			IsNew:    p.IsNew,
			Notes:    deref(p.Notes),
		})
	}
	for _, s := range data.Settings {
		doc.Settings[s.Key] = s.Value
	}

	return yaml.Marshal(doc)
}

type yamlDocument struct {
	Version     string            `yaml:"version"`
	ExportDate  string            `yaml:"export_date"`
	Tool        string            `yaml:"tool"`
	CheckIns    []yamlCheckIn     `yaml:"checkins,omitempty"`
	Meals       []yamlMeal        `yaml:"meals,omitempty"`
	GymSessions []yamlSession     `yaml:"gym_sessions,omitempty"`
	Habits      []yamlHabit       `yaml:"habits,omitempty"`
	Goals       []yamlGoal        `yaml:"goals,omitempty"`
	PRs         []yamlPR          `yaml:"prs,omitempty"`
	Settings    map[string]string `yaml:"settings,omitempty"`
}

type yamlCheckIn struct {
	ID          string   `yaml:"id"`
	Date        string   `yaml:"date"`
	HeightCm    float64  `yaml:"height_cm"`
	WeightKg    float64  `yaml:"weight_kg"`
	WaistCm     *float64 `yaml:"waist_cm,omitempty"`
	BMI         float64  `yaml:"bmi"`
	BMICategory string   `yaml:"bmi_category"`
	Notes       string   `yaml:"notes,omitempty"`
}

type yamlMeal struct {
	ID       string  `yaml:"id"`
	Datetime string  `yaml:"datetime"`
	Type     string  `yaml:"type"`
	Calories float64 `yaml:"calories"`
	Protein  float64 `yaml:"protein"`
	Carbs    float64 `yaml:"carbs"`
	Fat      float64 `yaml:"fat"`
	WaterMl  *int    `yaml:"water_ml,omitempty"`
	Notes    string  `yaml:"notes,omitempty"`
}

type yamlSession struct {
	ID          string         `yaml:"id"`
	Datetime    string         `yaml:"datetime"`
	Type        string         `yaml:"type"`
	DurationMin int            `yaml:"duration_min"`
	Intensity   int            `yaml:"intensity"`
	CardioType  string         `yaml:"cardio_type,omitempty"`
	CardioMin   *int           `yaml:"cardio_min,omitempty"`
	Notes       string         `yaml:"notes,omitempty"`
	Exercises   []yamlExercise `yaml:"exercises,omitempty"`
}

type yamlExercise struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Sets     int     `yaml:"sets"`
	Reps     int     `yaml:"reps"`
	WeightKg float64 `yaml:"weight_kg"`
	RestSec  int     `yaml:"rest_sec,omitempty"`
	Volume   float64 `yaml:"volume"`
}

type yamlHabit struct {
	ID         string   `yaml:"id"`
	Date       string   `yaml:"date"`
	WaterMl    *int     `yaml:"water_ml,omitempty"`
	Steps      *int     `yaml:"steps,omitempty"`
	Creatine   *bool    `yaml:"creatine,omitempty"`
	Stretching *bool    `yaml:"stretching,omitempty"`
	SleepHours *float64 `yaml:"sleep_hours,omitempty"`
	Score      int      `yaml:"score"`
}

type yamlGoal struct {
	ID       string  `yaml:"id"`
	Type     string  `yaml:"type"`
	Target   float64 `yaml:"target"`
	Current  float64 `yaml:"current"`
	Status   string  `yaml:"status"`
	Deadline string  `yaml:"deadline,omitempty"`
	Created  string  `yaml:"created"`
}

type yamlPR struct {
	ID       string  `yaml:"id"`
	Exercise string  `yaml:"exercise"`
	Type     string  `yaml:"type"`
	Value    float64 `yaml:"value"`
	Date     string  `yaml:"date"`
	IsNew    bool    `yaml:"is_new"`
	Notes    string  `yaml:"notes,omitempty"`
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
