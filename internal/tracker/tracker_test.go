// ABOUTME: Tests for the tracker service against a real SQLite store.
// ABOUTME: A fixed clock makes streak and "today" calculations deterministic.
package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

var fixedNow = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "journey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db).WithClock(func() time.Time { return fixedNow })
}

func TestCheckAndAddPR(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	pr, err := svc.CheckAndAddPR(ctx, "Bench", models.PRTypeMaxWeight, 80, "")
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.True(t, pr.IsNew)

	_, err = svc.CheckAndAddPR(ctx, "Bench", models.PRTypeMaxWeight, 85, "")
	require.NoError(t, err)

	pr, err = svc.CheckAndAddPR(ctx, "Bench", models.PRTypeMaxWeight, 85, "")
	require.NoError(t, err)
	assert.Nil(t, pr, "equal value is not a PR")

	pr, err = svc.CheckAndAddPR(ctx, "Bench", models.PRTypeMaxWeight, 86, "paused rep")
	require.NoError(t, err)
	require.NotNil(t, pr)
	require.NotNil(t, pr.Notes)
	assert.Equal(t, "paused rep", *pr.Notes)

	// Names are compared exactly, so a differently cased name starts its own history.
	pr, err = svc.CheckAndAddPR(ctx, "bench", models.PRTypeMaxWeight, 50, "")
	require.NoError(t, err)
	assert.NotNil(t, pr)

	// Other PR types are tracked separately.
	pr, err = svc.CheckAndAddPR(ctx, "Bench", "max_reps", 5, "")
	require.NoError(t, err)
	assert.NotNil(t, pr)

	history, err := svc.Repository().ListPRs(ctx, "Bench", models.PRTypeMaxWeight)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestLogExerciseDetectsPR(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	s := models.NewGymSession(models.WorkoutStrength).WithDatetime(fixedNow)
	require.NoError(t, svc.Repository().CreateGymSession(ctx, s))

	first, err := svc.LogExercise(ctx, models.NewExercise(s.ID, "Squat", 3, 5, 100))
	require.NoError(t, err)
	require.NotNil(t, first.PR)
	require.NotNil(t, first.PR.Notes)
	assert.Equal(t, AutoPRNote, *first.PR.Notes)
	assert.InDelta(t, 1500.0, first.Exercise.Volume, 1e-9)

	lighter, err := svc.LogExercise(ctx, models.NewExercise(s.ID, "Squat", 3, 8, 90))
	require.NoError(t, err)
	assert.Nil(t, lighter.PR)

	// A first bodyweight entry sets the baseline PR at 0 kg; repeats do not.
	bodyweight, err := svc.LogExercise(ctx, models.NewExercise(s.ID, "Pull-up", 3, 8, 0))
	require.NoError(t, err)
	require.NotNil(t, bodyweight.PR)
	assert.Zero(t, bodyweight.PR.Value)

	again, err := svc.LogExercise(ctx, models.NewExercise(s.ID, "Pull-up", 3, 6, 0))
	require.NoError(t, err)
	assert.Nil(t, again.PR)

	history, err := svc.ExerciseHistory(ctx, "Squat")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	other, err := svc.ExerciseHistory(ctx, "squat")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPlateau(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    bool
	}{
		{"too few", []float64{80, 80}, false},
		{"flat three", []float64{80.0, 80.2, 79.9}, true},
		{"moving three", []float64{80.0, 81.0, 79.0}, false},
		{"only last four count", []float64{90, 80.0, 80.1, 80.2, 80.3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestService(t)
			ctx := context.Background()
			start := fixedNow.AddDate(0, 0, -len(tt.weights))
			for i, w := range tt.weights {
				require.NoError(t, svc.Repository().CreateCheckIn(ctx, models.NewCheckIn(start.AddDate(0, 0, i), 180, w)))
			}
			got, err := svc.Plateau(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDailyTotals(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	repo := svc.Repository()

	today := models.Day(fixedNow)
	require.NoError(t, repo.CreateMeal(ctx, models.NewMeal(models.MealBreakfast).WithDatetime(today).WithMacros(400, 20, 50, 10).WithWater(500)))
	require.NoError(t, repo.CreateMeal(ctx, models.NewMeal(models.MealDinner).WithDatetime(today.Add(23*time.Hour)).WithMacros(700, 40, 60, 30)))
	require.NoError(t, repo.CreateMeal(ctx, models.NewMeal(models.MealSnack).WithDatetime(today.AddDate(0, 0, 1)).WithMacros(9999, 0, 0, 0)))

	totals, err := svc.DailyTotals(ctx, fixedNow)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, totals.Calories, 1e-9)
	assert.InDelta(t, 60.0, totals.Protein, 1e-9)
	assert.InDelta(t, 110.0, totals.Carbs, 1e-9)
	assert.InDelta(t, 40.0, totals.Fat, 1e-9)
	assert.Equal(t, 500, totals.WaterMl)
	assert.Equal(t, 2, totals.Meals)
}

func TestWeeklyGymCount(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{
		monday,
		monday.Add(50 * time.Hour),
		monday.AddDate(0, 0, 7),
		monday.Add(-time.Second),
	} {
		require.NoError(t, svc.Repository().CreateGymSession(ctx, models.NewGymSession(models.WorkoutCardio).WithDatetime(at)))
	}

	n, err := svc.WeeklyGymCount(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGymStreak(t *testing.T) {
	tests := []struct {
		name     string
		daysBack []int
		want     int
	}{
		{"none", nil, 0},
		{"today and yesterday", []int{0, 1}, 2},
		{"gap breaks streak", []int{0, 3}, 1},
		{"two sessions same day", []int{0, 0, 1}, 2},
		{"started yesterday", []int{1, 2, 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestService(t)
			ctx := context.Background()
			for _, d := range tt.daysBack {
				at := fixedNow.AddDate(0, 0, -d)
				require.NoError(t, svc.Repository().CreateGymSession(ctx, models.NewGymSession(models.WorkoutStrength).WithDatetime(at)))
			}
			got, err := svc.GymStreak(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoalsWithProgress(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	repo := svc.Repository()

	require.NoError(t, repo.CreateGoal(ctx, models.NewGoal("bench", 100, 80)))
	require.NoError(t, repo.CreateGoal(ctx, models.NewGoal("steps", 0, 5000)))
	require.NoError(t, repo.CreateGoal(ctx, models.NewGoal("runs", 10, 15).WithStatus(models.GoalCompleted)))

	all, err := svc.Goals(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	byType := map[string]float64{}
	for _, g := range all {
		byType[g.Goal.Type] = g.Progress
	}
	assert.InDelta(t, 80.0, byType["bench"], 1e-9)
	assert.InDelta(t, 0.0, byType["steps"], 1e-9)
	assert.InDelta(t, 100.0, byType["runs"], 1e-9)

	active := models.GoalActive
	onlyActive, err := svc.Goals(ctx, &active)
	require.NoError(t, err)
	assert.Len(t, onlyActive, 2)
}

func TestMarkPRsSeen(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CheckAndAddPR(ctx, "Row", models.PRTypeMaxWeight, 60, "")
	require.NoError(t, err)

	n, err := svc.MarkPRsSeen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
