// ABOUTME: Tests for the state facade's explicit-refresh contract and dashboard.
// ABOUTME: Uses the map-backed cache and a Badger in-memory store.
package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/journey/internal/cache"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
	"github.com/harperreed/journey/internal/tracker"
)

var fixedNow = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func setupTestFacade(t *testing.T) (*Facade, storage.Repository) {
	t.Helper()

	kv, err := storage.OpenKVInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	svc := tracker.New(kv).WithClock(func() time.Time { return fixedNow })
	return New(svc, cache.NewMemoryCache()), kv
}

func TestReadsAreStaleUntilRefresh(t *testing.T) {
	f, repo := setupTestFacade(t)
	ctx := context.Background()

	assert.Empty(t, f.CheckIns())

	require.NoError(t, repo.CreateCheckIn(ctx, models.NewCheckIn(fixedNow, 180, 80)))
	assert.Empty(t, f.CheckIns(), "write must not show up before refresh")

	require.NoError(t, f.RefreshCheckIns(ctx))
	require.Len(t, f.CheckIns(), 1)

	require.NoError(t, repo.CreateCheckIn(ctx, models.NewCheckIn(fixedNow.AddDate(0, 0, -1), 180, 81)))
	assert.Len(t, f.CheckIns(), 1)
	require.NoError(t, f.RefreshAll(ctx))
	assert.Len(t, f.CheckIns(), 2)

	f.Invalidate()
	assert.Empty(t, f.CheckIns())
}

func TestMealWindow(t *testing.T) {
	f, repo := setupTestFacade(t)
	ctx := context.Background()

	recent := models.NewMeal(models.MealLunch).WithDatetime(fixedNow.AddDate(0, 0, -29))
	old := models.NewMeal(models.MealLunch).WithDatetime(fixedNow.AddDate(0, 0, -31))
	require.NoError(t, repo.CreateMeal(ctx, recent))
	require.NoError(t, repo.CreateMeal(ctx, old))

	require.NoError(t, f.RefreshMeals(ctx))
	meals := f.Meals()
	require.Len(t, meals, 1)
	assert.Equal(t, recent.ID, meals[0].ID)
}

func TestTodayHabit(t *testing.T) {
	f, repo := setupTestFacade(t)
	ctx := context.Background()

	require.NoError(t, f.RefreshHabits(ctx))
	assert.Nil(t, f.TodayHabit())

	require.NoError(t, repo.CreateHabit(ctx, models.NewHabit(fixedNow.AddDate(0, 0, -1)).WithSteps(9000)))
	require.NoError(t, repo.CreateHabit(ctx, models.NewHabit(fixedNow).WithWater(2500).WithSteps(100)))

	require.NoError(t, f.RefreshHabits(ctx))
	h := f.TodayHabit()
	require.NotNil(t, h)
	assert.Equal(t, 50, h.Score)
}

func TestDashboard(t *testing.T) {
	f, repo := setupTestFacade(t)
	ctx := context.Background()

	for i, w := range []float64{80.2, 80.0, 80.1} {
		require.NoError(t, repo.CreateCheckIn(ctx, models.NewCheckIn(fixedNow.AddDate(0, 0, i-2), 180, w)))
	}
	require.NoError(t, repo.CreateMeal(ctx, models.NewMeal(models.MealBreakfast).
		WithDatetime(models.Day(fixedNow).Add(8*time.Hour)).WithMacros(500, 30, 60, 10)))
	for _, back := range []int{0, 1, 2, 9} {
		s := models.NewGymSession(models.WorkoutStrength).WithDatetime(fixedNow.Add(-time.Hour).AddDate(0, 0, -back))
		require.NoError(t, repo.CreateGymSession(ctx, s))
	}
	require.NoError(t, repo.CreateHabit(ctx, models.NewHabit(fixedNow).WithCreatine(true)))
	require.NoError(t, repo.CreateGoal(ctx, models.NewGoal("weight", 100, 80)))
	require.NoError(t, repo.CreateGoal(ctx, models.NewGoal("old", 1, 1).WithStatus(models.GoalCompleted)))
	require.NoError(t, repo.CreatePR(ctx, models.NewPR("Bench", models.PRTypeMaxWeight, 90)))

	empty := f.Dashboard()
	assert.Nil(t, empty.CurrentWeight)
	assert.Zero(t, empty.GymStreak)

	require.NoError(t, f.RefreshAll(ctx))
	d := f.Dashboard()

	require.NotNil(t, d.CurrentWeight)
	assert.InDelta(t, 80.1, *d.CurrentWeight, 1e-9)
	require.NotNil(t, d.WeightChange)
	assert.InDelta(t, 0.1, *d.WeightChange, 1e-9)
	assert.Equal(t, models.BMINormal, d.BMICategory)
	assert.True(t, d.Plateau)
	assert.InDelta(t, 500.0, d.Today.Calories, 1e-9)
	assert.Equal(t, 3, d.WeeklyGymCount)
	assert.Equal(t, 3, d.GymStreak)
	assert.Equal(t, 100, d.HabitScore)
	require.Len(t, d.ActiveGoals, 1)
	assert.InDelta(t, 80.0, d.ActiveGoals[0].Progress, 1e-9)
	assert.Equal(t, 1, d.NewPRs)
}

func TestRistrettoBackedFacade(t *testing.T) {
	kv, err := storage.OpenKVInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	rc, err := cache.NewRistrettoCache()
	require.NoError(t, err)
	t.Cleanup(rc.Close)

	f := New(tracker.New(kv), rc)
	ctx := context.Background()
	require.NoError(t, kv.CreateGoal(ctx, models.NewGoal("weight", 75, 80)))
	require.NoError(t, f.RefreshGoals(ctx))
	assert.Len(t, f.Goals(), 1)
}
