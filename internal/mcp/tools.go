// ABOUTME: MCP tool implementations for the journey tracker.
// ABOUTME: Check-ins, meals, gym sessions, exercises, habits, goals, PRs and the dashboard.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_checkin",
		Description: "Record a body check-in (height, weight, waist). BMI is computed automatically.",
	}, s.handleAddCheckIn)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_checkins",
		Description: "List recent check-ins, newest first",
	}, s.handleListCheckIns)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal",
		Description: "Log a meal with its macros",
	}, s.handleAddMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_totals",
		Description: "Sum calories, macros and water for one day",
	}, s.handleDailyTotals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_gym_session",
		Description: "Create a gym session",
	}, s.handleAddGymSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_gym_sessions",
		Description: "List recent gym sessions, newest first",
	}, s.handleListGymSessions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_gym_session",
		Description: "Get a gym session with all its exercises",
	}, s.handleGetGymSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_gym_session",
		Description: "Delete a gym session and its exercises",
	}, s.handleDeleteGymSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercise",
		Description: "Add an exercise to a gym session. Records a max_weight PR when the weight beats the previous best.",
	}, s.handleAddExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_habit",
		Description: "Log daily habits. Fields given are merged into the day's existing log.",
	}, s.handleLogHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_goal",
		Description: "Create a goal with a target value",
	}, s.handleAddGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_goals",
		Description: "List goals with progress, optionally filtered by status",
	}, s.handleListGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_prs",
		Description: "List personal records, optionally filtered by exercise and type",
	}, s.handleListPRs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Summary of weight, nutrition, training, habits, goals and new PRs",
	}, s.handleGetDashboard)
}

// Tool input/output types

type addCheckInInput struct {
	Date     string  `json:"date,omitempty" jsonschema:"Day of the check-in (YYYY-MM-DD), defaults to today"`
	HeightCm float64 `json:"height_cm" jsonschema:"Height in centimetres"`
	WeightKg float64 `json:"weight_kg" jsonschema:"Weight in kilograms"`
	WaistCm  float64 `json:"waist_cm,omitempty" jsonschema:"Waist circumference in centimetres"`
	Notes    string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type checkInOutput struct {
	ID          string  `json:"id"`
	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmi_category"`
	Message     string  `json:"message"`
}

type listInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only include records on or after this day (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type addMealInput struct {
	MealType string  `json:"meal_type" jsonschema:"Meal type (breakfast, lunch, dinner, snack)"`
	Datetime string  `json:"datetime,omitempty" jsonschema:"When the meal was eaten (ISO 8601), defaults to now"`
	Calories float64 `json:"calories,omitempty" jsonschema:"Calories (kcal)"`
	Protein  float64 `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Carbs    float64 `json:"carbs,omitempty" jsonschema:"Carbohydrates in grams"`
	Fat      float64 `json:"fat,omitempty" jsonschema:"Fat in grams"`
	WaterMl  int     `json:"water_ml,omitempty" jsonschema:"Water drunk with the meal in ml"`
	Notes    string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type mealOutput struct {
	ID       string  `json:"id"`
	MealType string  `json:"meal_type"`
	Calories float64 `json:"calories"`
	Message  string  `json:"message"`
}

type dailyTotalsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day to total (YYYY-MM-DD), defaults to today"`
}

type dailyTotalsOutput struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	WaterMl  int     `json:"water_ml"`
	Meals    int     `json:"meals"`
	Message  string  `json:"message"`
}

type addGymSessionInput struct {
	WorkoutType string `json:"workout_type" jsonschema:"Workout type (strength, cardio, mixed, flexibility)"`
	Datetime    string `json:"datetime,omitempty" jsonschema:"Session start (ISO 8601), defaults to now"`
	DurationMin int    `json:"duration_min,omitempty" jsonschema:"Duration in minutes"`
	CardioType  string `json:"cardio_type,omitempty" jsonschema:"Cardio machine or activity (treadmill, bike, elliptical, rowing, stairs, swimming, running, other)"`
	CardioMin   int    `json:"cardio_min,omitempty" jsonschema:"Cardio minutes, requires cardio_type"`
	Intensity   int    `json:"intensity,omitempty" jsonschema:"Perceived intensity 1-10 (default 5)"`
	Notes       string `json:"notes,omitempty" jsonschema:"Session notes"`
}

type gymSessionOutput struct {
	ID          string `json:"id"`
	WorkoutType string `json:"workout_type"`
	Message     string `json:"message"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Record ID or prefix"`
}

type addExerciseInput struct {
	SessionID    string  `json:"session_id" jsonschema:"Gym session ID or prefix"`
	ExerciseName string  `json:"exercise_name" jsonschema:"Exercise name, e.g. Bench Press"`
	Sets         int     `json:"sets,omitempty" jsonschema:"Number of sets"`
	Reps         int     `json:"reps,omitempty" jsonschema:"Reps per set"`
	WeightKg     float64 `json:"weight_kg,omitempty" jsonschema:"Weight in kilograms"`
	RestSec      int     `json:"rest_sec,omitempty" jsonschema:"Rest between sets in seconds"`
}

type exerciseOutput struct {
	ID      string  `json:"id"`
	Volume  float64 `json:"volume"`
	NewPR   bool    `json:"new_pr"`
	Message string  `json:"message"`
}

type logHabitInput struct {
	Date       string   `json:"date,omitempty" jsonschema:"Day to log (YYYY-MM-DD), defaults to today"`
	WaterMl    *int     `json:"water_ml,omitempty" jsonschema:"Water drunk in ml"`
	Steps      *int     `json:"steps,omitempty" jsonschema:"Step count"`
	Creatine   *bool    `json:"creatine,omitempty" jsonschema:"Creatine taken"`
	Stretching *bool    `json:"stretching,omitempty" jsonschema:"Stretching done"`
	SleepHours *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours slept"`
}

type habitOutput struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Score   int    `json:"score"`
	Message string `json:"message"`
}

type addGoalInput struct {
	Type         string  `json:"type" jsonschema:"What the goal measures, e.g. weight or bench_press"`
	TargetValue  float64 `json:"target_value" jsonschema:"Value to reach"`
	CurrentValue float64 `json:"current_value,omitempty" jsonschema:"Current value"`
	Deadline     string  `json:"deadline,omitempty" jsonschema:"Deadline (YYYY-MM-DD)"`
}

type goalOutput struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

type listGoalsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status (active, completed, paused)"`
}

type listPRsInput struct {
	ExerciseName string `json:"exercise_name,omitempty" jsonschema:"Filter by exercise name"`
	PRType       string `json:"pr_type,omitempty" jsonschema:"Filter by PR type, e.g. max_weight"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type emptyInput struct{}

// Tool handlers

func (s *Server) handleAddCheckIn(ctx context.Context, req *mcp.CallToolRequest, input addCheckInInput) (*mcp.CallToolResult, checkInOutput, error) {
	date, err := s.parseDayOrToday(input.Date)
	if err != nil {
		return nil, checkInOutput{}, err
	}

	c := models.NewCheckIn(date, input.HeightCm, input.WeightKg)
	if input.WaistCm != 0 {
		c.WithWaist(input.WaistCm)
	}
	if input.Notes != "" {
		c.WithNotes(input.Notes)
	}

	if err := s.repo.CreateCheckIn(ctx, c); err != nil {
		return nil, checkInOutput{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	return nil, checkInOutput{
		ID:          shortID(c.ID.String()),
		BMI:         c.BMI,
		BMICategory: string(c.BMICategory),
		Message:     fmt.Sprintf("Checked in %.1f kg on %s, BMI %.1f (%s) (ID: %s)", c.WeightKg, c.Date.Format(models.DayLayout), c.BMI, c.BMICategory, shortID(c.ID.String())),
	}, nil
}

func (s *Server) handleListCheckIns(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	q, err := listQuery(input)
	if err != nil {
		return nil, nil, err
	}

	checkIns, err := s.repo.ListCheckIns(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	if len(checkIns) == 0 {
		return nil, map[string]interface{}{"message": "No check-ins found."}, nil
	}

	return nil, map[string]interface{}{"checkins": checkIns}, nil
}

func (s *Server) handleAddMeal(ctx context.Context, req *mcp.CallToolRequest, input addMealInput) (*mcp.CallToolResult, mealOutput, error) {
	if !models.IsValidMealType(input.MealType) {
		return nil, mealOutput{}, fmt.Errorf("unknown meal type: %s", input.MealType)
	}

	m := models.NewMeal(models.MealType(input.MealType)).
		WithDatetime(s.svc.Now()).
		WithMacros(input.Calories, input.Protein, input.Carbs, input.Fat)
	if input.Datetime != "" {
		t, err := parseTimestamp(input.Datetime)
		if err != nil {
			return nil, mealOutput{}, err
		}
		m.WithDatetime(t)
	}
	if input.WaterMl != 0 {
		m.WithWater(input.WaterMl)
	}
	if input.Notes != "" {
		m.WithNotes(input.Notes)
	}

	if err := s.repo.CreateMeal(ctx, m); err != nil {
		return nil, mealOutput{}, fmt.Errorf("failed to create meal: %w", err)
	}

	return nil, mealOutput{
		ID:       shortID(m.ID.String()),
		MealType: input.MealType,
		Calories: m.Calories,
		Message:  fmt.Sprintf("Logged %s: %.0f kcal (ID: %s)", input.MealType, m.Calories, shortID(m.ID.String())),
	}, nil
}

func (s *Server) handleDailyTotals(ctx context.Context, req *mcp.CallToolRequest, input dailyTotalsInput) (*mcp.CallToolResult, dailyTotalsOutput, error) {
	day, err := s.parseDayOrToday(input.Date)
	if err != nil {
		return nil, dailyTotalsOutput{}, err
	}

	totals, err := s.svc.DailyTotals(ctx, day)
	if err != nil {
		return nil, dailyTotalsOutput{}, fmt.Errorf("failed to compute daily totals: %w", err)
	}

	date := day.Format(models.DayLayout)
	return nil, dailyTotalsOutput{
		Date:     date,
		Calories: totals.Calories,
		Protein:  totals.Protein,
		Carbs:    totals.Carbs,
		Fat:      totals.Fat,
		WaterMl:  totals.WaterMl,
		Meals:    totals.Meals,
		Message: fmt.Sprintf("%s: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat across %d meals",
			date, totals.Calories, totals.Protein, totals.Carbs, totals.Fat, totals.Meals),
	}, nil
}

func (s *Server) handleAddGymSession(ctx context.Context, req *mcp.CallToolRequest, input addGymSessionInput) (*mcp.CallToolResult, gymSessionOutput, error) {
	if !models.IsValidWorkoutType(input.WorkoutType) {
		return nil, gymSessionOutput{}, fmt.Errorf("unknown workout type: %s", input.WorkoutType)
	}

	gs := models.NewGymSession(models.WorkoutType(input.WorkoutType)).
		WithDatetime(s.svc.Now()).
		WithDuration(input.DurationMin)
	if input.Datetime != "" {
		t, err := parseTimestamp(input.Datetime)
		if err != nil {
			return nil, gymSessionOutput{}, err
		}
		gs.WithDatetime(t)
	}
	if input.CardioType != "" {
		gs.WithCardio(models.CardioType(input.CardioType), input.CardioMin)
	}
	if input.Intensity != 0 {
		gs.WithIntensity(input.Intensity)
	}
	if input.Notes != "" {
		gs.WithNotes(input.Notes)
	}

	if err := s.repo.CreateGymSession(ctx, gs); err != nil {
		return nil, gymSessionOutput{}, fmt.Errorf("failed to create gym session: %w", err)
	}

	return nil, gymSessionOutput{
		ID:          shortID(gs.ID.String()),
		WorkoutType: input.WorkoutType,
		Message:     fmt.Sprintf("Added %s session (ID: %s)", input.WorkoutType, shortID(gs.ID.String())),
	}, nil
}

func (s *Server) handleListGymSessions(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	q, err := listQuery(input)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := s.repo.ListGymSessions(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list gym sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil, map[string]interface{}{"message": "No gym sessions found."}, nil
	}

	return nil, map[string]interface{}{"sessions": sessions}, nil
}

func (s *Server) handleGetGymSession(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, any, error) {
	gs, err := s.repo.GetGymSessionWithExercises(ctx, input.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, fmt.Errorf("gym session not found: %s: %w", input.ID, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gym session: %w", err)
	}

	return nil, map[string]interface{}{
		"session":   gs,
		"exercises": gs.Exercises,
	}, nil
}

func (s *Server) handleDeleteGymSession(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteGymSession(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete gym session: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted gym session: %s", input.ID),
	}, nil
}

func (s *Server) handleAddExercise(ctx context.Context, req *mcp.CallToolRequest, input addExerciseInput) (*mcp.CallToolResult, exerciseOutput, error) {
	gs, err := s.repo.GetGymSession(ctx, input.SessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, exerciseOutput{}, fmt.Errorf("gym session not found: %s: %w", input.SessionID, err)
	}
	if err != nil {
		return nil, exerciseOutput{}, fmt.Errorf("failed to get gym session: %w", err)
	}

	e := models.NewExercise(gs.ID, input.ExerciseName, input.Sets, input.Reps, input.WeightKg)
	if input.RestSec != 0 {
		e.WithRest(input.RestSec)
	}

	result, err := s.svc.LogExercise(ctx, e)
	if err != nil {
		return nil, exerciseOutput{}, fmt.Errorf("failed to add exercise: %w", err)
	}

	msg := fmt.Sprintf("Added %s: %dx%d @ %.1f kg (ID: %s)", e.ExerciseName, e.Sets, e.Reps, e.WeightKg, shortID(e.ID.String()))
	if result.PR != nil {
		msg += fmt.Sprintf(". New PR: %.1f kg!", result.PR.Value)
	}

	return nil, exerciseOutput{
		ID:      shortID(e.ID.String()),
		Volume:  e.Volume,
		NewPR:   result.PR != nil,
		Message: msg,
	}, nil
}

func (s *Server) handleLogHabit(ctx context.Context, req *mcp.CallToolRequest, input logHabitInput) (*mcp.CallToolResult, habitOutput, error) {
	day, err := s.parseDayOrToday(input.Date)
	if err != nil {
		return nil, habitOutput{}, err
	}

	existing, err := s.repo.GetHabitByDate(ctx, day)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, habitOutput{}, fmt.Errorf("failed to load habits: %w", err)
	}

	var h *models.Habit
	if existing == nil {
		h = models.NewHabit(day)
		h.WaterMl, h.Steps, h.Creatine = input.WaterMl, input.Steps, input.Creatine
		h.Stretching, h.SleepHours = input.Stretching, input.SleepHours
		if err := s.repo.CreateHabit(ctx, h); err != nil {
			return nil, habitOutput{}, fmt.Errorf("failed to log habits: %w", err)
		}
	} else {
		var p models.HabitPatch
		setIfPresent(&p.WaterMl, input.WaterMl)
		setIfPresent(&p.Steps, input.Steps)
		setIfPresent(&p.Creatine, input.Creatine)
		setIfPresent(&p.Stretching, input.Stretching)
		setIfPresent(&p.SleepHours, input.SleepHours)
		h, err = s.repo.UpdateHabit(ctx, existing.ID.String(), p)
		if err != nil {
			return nil, habitOutput{}, fmt.Errorf("failed to log habits: %w", err)
		}
	}

	date := h.Date.Format(models.DayLayout)
	return nil, habitOutput{
		ID:      shortID(h.ID.String()),
		Date:    date,
		Score:   h.Score,
		Message: fmt.Sprintf("Logged habits for %s, score %d/100", date, h.Score),
	}, nil
}

func (s *Server) handleAddGoal(ctx context.Context, req *mcp.CallToolRequest, input addGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	g := models.NewGoal(input.Type, input.TargetValue, input.CurrentValue)
	if input.Deadline != "" {
		d, err := models.ParseDay(input.Deadline)
		if err != nil {
			return nil, goalOutput{}, fmt.Errorf("invalid deadline: %w", err)
		}
		g.WithDeadline(d)
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to create goal: %w", err)
	}

	progress := metrics.GoalProgress(*g)
	return nil, goalOutput{
		ID:       shortID(g.ID.String()),
		Progress: progress,
		Message:  fmt.Sprintf("Added goal %s: %.1f of %.1f (%.0f%%) (ID: %s)", g.Type, g.CurrentValue, g.TargetValue, progress, shortID(g.ID.String())),
	}, nil
}

func (s *Server) handleListGoals(ctx context.Context, req *mcp.CallToolRequest, input listGoalsInput) (*mcp.CallToolResult, any, error) {
	var status *models.GoalStatus
	if input.Status != "" {
		if !models.IsValidGoalStatus(input.Status) {
			return nil, nil, fmt.Errorf("unknown goal status: %s", input.Status)
		}
		gs := models.GoalStatus(input.Status)
		status = &gs
	}

	goals, err := s.svc.Goals(ctx, status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list goals: %w", err)
	}

	if len(goals) == 0 {
		return nil, map[string]interface{}{"message": "No goals found."}, nil
	}

	return nil, map[string]interface{}{"goals": goals}, nil
}

func (s *Server) handleListPRs(ctx context.Context, req *mcp.CallToolRequest, input listPRsInput) (*mcp.CallToolResult, any, error) {
	prs, err := s.repo.ListPRs(ctx, input.ExerciseName, input.PRType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list PRs: %w", err)
	}

	if len(prs) == 0 {
		return nil, map[string]interface{}{"message": "No personal records found."}, nil
	}

	return nil, map[string]interface{}{"prs": prs}, nil
}

func (s *Server) handleGetDashboard(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	if err := s.state.RefreshAll(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to refresh dashboard: %w", err)
	}
	return nil, s.state.Dashboard(), nil
}

// Helpers

func (s *Server) parseDayOrToday(v string) (time.Time, error) {
	if v == "" {
		return models.Day(s.svc.Now()), nil
	}
	d, err := models.ParseDay(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %w", err)
	}
	return d, nil
}

// parseTimestamp accepts RFC 3339 or "YYYY-MM-DD HH:MM" (UTC).
func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04", v)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: use RFC 3339 or YYYY-MM-DD HH:MM", v)
	}
	return t, nil
}

func listQuery(input listInput) (storage.Query, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	q := storage.Query{Limit: input.Limit}
	if input.Since != "" {
		d, err := models.ParseDay(input.Since)
		if err != nil {
			return storage.Query{}, fmt.Errorf("invalid since: %w", err)
		}
		q.From = &d
	}
	return q, nil
}

func setIfPresent[T any](dst *models.Field[T], v *T) {
	if v != nil {
		*dst = models.Value(*v)
	}
}

func shortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
