// ABOUTME: Contract tests run against every Repository implementation.
// ABOUTME: Covers CRUD, derived fields, prefix lookup, ordering and range queries.
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

// setupTestDB creates a SQLite database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "journey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupTestKV creates an in-memory Badger store.
func setupTestKV(t *testing.T) *KVStore {
	t.Helper()

	kv, err := OpenKVInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

// forEachBackend runs fn as a subtest against a fresh store of every kind.
func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
}

func day(s string) time.Time {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCheckInCRUD(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		c := models.NewCheckIn(day("2026-03-01"), 180, 81).WithWaist(88).WithNotes("morning")
		require.NoError(t, repo.CreateCheckIn(ctx, c))
		require.NotEqual(t, uuid.Nil, c.ID)
		assert.InDelta(t, 25.0, c.BMI, 1e-9)
		assert.Equal(t, models.BMIOverweight, c.BMICategory)

		got, err := repo.GetCheckIn(ctx, c.ID.String()[:8])
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.True(t, got.Date.Equal(c.Date))
		assert.InDelta(t, 81.0, got.WeightKg, 1e-9)
		require.NotNil(t, got.WaistCm)
		assert.InDelta(t, 88.0, *got.WaistCm, 1e-9)
		require.NotNil(t, got.Notes)
		assert.Equal(t, "morning", *got.Notes)

		updated, err := repo.UpdateCheckIn(ctx, c.ID.String(), models.CheckInPatch{
			WeightKg: models.Value(72.9),
			Notes:    models.Null[string](),
		})
		require.NoError(t, err)
		assert.InDelta(t, 22.5, updated.BMI, 1e-9)
		assert.Equal(t, models.BMINormal, updated.BMICategory)
		assert.Nil(t, updated.Notes)

		got, err = repo.GetCheckIn(ctx, c.ID.String())
		require.NoError(t, err)
		assert.InDelta(t, 22.5, got.BMI, 1e-9)
		assert.Nil(t, got.Notes)

		require.NoError(t, repo.DeleteCheckIn(ctx, c.ID.String()[:8]))
		_, err = repo.GetCheckIn(ctx, c.ID.String())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCheckInUpdateLeavesBMIWhenInputsAbsent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		c := models.NewCheckIn(day("2026-03-01"), 180, 81)
		require.NoError(t, repo.CreateCheckIn(ctx, c))

		updated, err := repo.UpdateCheckIn(ctx, c.ID.String(), models.CheckInPatch{
			Notes: models.Value("felt good"),
		})
		require.NoError(t, err)
		assert.InDelta(t, c.BMI, updated.BMI, 1e-9)
		assert.Equal(t, c.BMICategory, updated.BMICategory)
	})
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		err := repo.CreateCheckIn(ctx, models.NewCheckIn(day("2026-03-01"), 0, -1))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		err = repo.CreateMeal(ctx, models.NewMeal("brunch"))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		err = repo.CreateGymSession(ctx, models.NewGymSession(models.WorkoutStrength).WithIntensity(11))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		err = repo.CreateHabit(ctx, models.NewHabit(day("2026-03-01")).WithSleep(25))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		err = repo.CreateGoal(ctx, models.NewGoal(" ", 10, 0))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		err = repo.CreatePR(ctx, models.NewPR("", "max_weight", 100))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		checkIns, err := repo.ListCheckIns(ctx, Query{})
		require.NoError(t, err)
		assert.Empty(t, checkIns)
	})
}

func TestUpdateRejectsNullRequiredField(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		c := models.NewCheckIn(day("2026-03-01"), 180, 81)
		require.NoError(t, repo.CreateCheckIn(ctx, c))

		_, err := repo.UpdateCheckIn(ctx, c.ID.String(), models.CheckInPatch{WeightKg: models.Null[float64]()})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		got, err := repo.GetCheckIn(ctx, c.ID.String())
		require.NoError(t, err)
		assert.InDelta(t, 81.0, got.WeightKg, 1e-9)
	})
}

func TestMealCRUDAndRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

		var ids []uuid.UUID
		for i, mt := range []models.MealType{models.MealBreakfast, models.MealLunch, models.MealDinner} {
			m := models.NewMeal(mt).
				WithDatetime(base.Add(time.Duration(i) * 5 * time.Hour)).
				WithMacros(500, 30, 50, 20)
			if i == 0 {
				m.WithWater(400).WithPhoto([]byte{0x89, 0x50, 0x4e, 0x47})
			}
			require.NoError(t, repo.CreateMeal(ctx, m))
			ids = append(ids, m.ID)
		}

		newest, err := repo.ListMeals(ctx, Query{})
		require.NoError(t, err)
		require.Len(t, newest, 3)
		assert.Equal(t, ids[2], newest[0].ID)
		assert.Equal(t, ids[0], newest[2].ID)

		oldest, err := repo.ListMeals(ctx, Query{Order: Oldest, Limit: 2})
		require.NoError(t, err)
		require.Len(t, oldest, 2)
		assert.Equal(t, ids[0], oldest[0].ID)
		assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, oldest[0].Photo)
		require.NotNil(t, oldest[0].WaterMl)
		assert.Equal(t, 400, *oldest[0].WaterMl)

		// [from, to) excludes the dinner at exactly to.
		window, err := repo.ListMeals(ctx, Between(base, base.Add(10*time.Hour)))
		require.NoError(t, err)
		assert.Len(t, window, 2)

		updated, err := repo.UpdateMeal(ctx, ids[1].String(), models.MealPatch{
			Calories: models.Value(650.0),
			Fat:      models.Null[float64](),
		})
		require.NoError(t, err)
		assert.InDelta(t, 650.0, updated.Calories, 1e-9)
		assert.InDelta(t, 0.0, updated.Fat, 1e-9)
		assert.InDelta(t, 30.0, updated.Protein, 1e-9)

		require.NoError(t, repo.DeleteMeal(ctx, ids[1].String()))
		all, err := repo.ListMeals(ctx, Since(base))
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestGymSessionWithExercises(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		s := models.NewGymSession(models.WorkoutMixed).
			WithDuration(60).
			WithCardio(models.CardioRowing, 10).
			WithNotes("legs")
		require.NoError(t, repo.CreateGymSession(ctx, s))
		assert.Equal(t, models.DefaultIntensity, s.Intensity)

		squat := models.NewExercise(s.ID, "Squat", 3, 10, 20).WithRest(90)
		bench := models.NewExercise(s.ID, "Bench", 5, 5, 60)
		require.NoError(t, repo.CreateExercise(ctx, squat))
		require.NoError(t, repo.CreateExercise(ctx, bench))
		assert.InDelta(t, 600.0, squat.Volume, 1e-9)

		full, err := repo.GetGymSessionWithExercises(ctx, s.ID.String()[:8])
		require.NoError(t, err)
		require.Len(t, full.Exercises, 2)
		assert.Equal(t, "Bench", full.Exercises[0].ExerciseName)
		assert.Equal(t, "Squat", full.Exercises[1].ExerciseName)
		require.NotNil(t, full.CardioType)
		assert.Equal(t, models.CardioRowing, *full.CardioType)

		updated, err := repo.UpdateGymSession(ctx, s.ID.String(), models.GymSessionPatch{
			CardioType: models.Null[models.CardioType](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.CardioType)
		assert.Nil(t, updated.CardioMin)
	})
}

func TestCreateExerciseRequiresSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		err := repo.CreateExercise(ctx, models.NewExercise(uuid.New(), "Squat", 3, 10, 20))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestExerciseVolumeRecompute(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		s := models.NewGymSession(models.WorkoutStrength)
		require.NoError(t, repo.CreateGymSession(ctx, s))
		e := models.NewExercise(s.ID, "Row", 3, 10, 20)
		require.NoError(t, repo.CreateExercise(ctx, e))

		// Only reps sent: stored sets and weight fill the gaps.
		updated, err := repo.UpdateExercise(ctx, e.ID.String(), models.ExercisePatch{Reps: models.Value(12)})
		require.NoError(t, err)
		assert.InDelta(t, 720.0, updated.Volume, 1e-9)

		// Clearing weight counts it as zero.
		updated, err = repo.UpdateExercise(ctx, e.ID.String(), models.ExercisePatch{WeightKg: models.Null[float64]()})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, updated.Volume, 1e-9)

		// A name-only update leaves volume alone.
		updated, err = repo.UpdateExercise(ctx, e.ID.String(), models.ExercisePatch{ExerciseName: models.Value("Cable Row")})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, updated.Volume, 1e-9)
		assert.Equal(t, "Cable Row", updated.ExerciseName)
	})
}

func TestDeleteGymSessionCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		s := models.NewGymSession(models.WorkoutStrength)
		other := models.NewGymSession(models.WorkoutStrength)
		require.NoError(t, repo.CreateGymSession(ctx, s))
		require.NoError(t, repo.CreateGymSession(ctx, other))
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.CreateExercise(ctx, models.NewExercise(s.ID, "Squat", 3, 10, 20)))
		}
		keep := models.NewExercise(other.ID, "Squat", 1, 1, 100)
		require.NoError(t, repo.CreateExercise(ctx, keep))

		require.NoError(t, repo.DeleteGymSession(ctx, s.ID.String()[:8]))

		_, err := repo.GetGymSession(ctx, s.ID.String())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		orphans, err := repo.ListExercisesBySession(ctx, s.ID)
		require.NoError(t, err)
		assert.Empty(t, orphans)

		remaining, err := repo.ListExercisesByName(ctx, "Squat")
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, keep.ID, remaining[0].ID)
	})
}

func TestListExercisesByName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

		var sessions []*models.GymSession
		for i := 0; i < 3; i++ {
			s := models.NewGymSession(models.WorkoutStrength).WithDatetime(base.AddDate(0, 0, i))
			require.NoError(t, repo.CreateGymSession(ctx, s))
			sessions = append(sessions, s)
			require.NoError(t, repo.CreateExercise(ctx, models.NewExercise(s.ID, "Bench Press", 3, 8, 60+float64(i)*5)))
		}
		require.NoError(t, repo.CreateExercise(ctx, models.NewExercise(sessions[0].ID, "Deadlift", 1, 5, 140)))

		history, err := repo.ListExercisesByName(ctx, "Bench Press")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, sessions[2].ID, history[0].SessionID)
		assert.Equal(t, sessions[0].ID, history[2].SessionID)

		other, err := repo.ListExercisesByName(ctx, "BENCH PRESS")
		require.NoError(t, err)
		assert.Empty(t, other, "names match exactly")
	})
}

func TestHabitDateIsUnique(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		h := models.NewHabit(day("2026-03-01")).WithWater(2500).WithSteps(5000)
		require.NoError(t, repo.CreateHabit(ctx, h))
		assert.Equal(t, 50, h.Score)

		err := repo.CreateHabit(ctx, models.NewHabit(day("2026-03-01")).WithCreatine(true))
		assert.ErrorIs(t, err, apperr.ErrValidation)

		other := models.NewHabit(day("2026-03-02")).WithCreatine(true)
		require.NoError(t, repo.CreateHabit(ctx, other))

		_, err = repo.UpdateHabit(ctx, other.ID.String(), models.HabitPatch{Date: models.Value(day("2026-03-01"))})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		got, err := repo.GetHabitByDate(ctx, time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, h.ID, got.ID)

		_, err = repo.GetHabitByDate(ctx, day("2026-03-05"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestHabitScoreRecomputedOnMergedRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		h := models.NewHabit(day("2026-03-01")).WithWater(2500).WithSteps(5000)
		require.NoError(t, repo.CreateHabit(ctx, h))

		updated, err := repo.UpdateHabit(ctx, h.ID.String(), models.HabitPatch{Steps: models.Value(9000)})
		require.NoError(t, err)
		assert.Equal(t, 100, updated.Score)

		updated, err = repo.UpdateHabit(ctx, h.ID.String(), models.HabitPatch{Creatine: models.Value(false)})
		require.NoError(t, err)
		assert.Equal(t, 67, updated.Score)

		habits, err := repo.ListHabits(ctx, Query{})
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.Equal(t, 67, habits[0].Score)
	})
}

func TestGoals(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		active := models.NewGoal("weight", 75, 80).WithDeadline(day("2026-06-01"))
		require.NoError(t, repo.CreateGoal(ctx, active))
		assert.False(t, active.CreatedAt.IsZero())

		paused := models.NewGoal("bench", 100, 80).WithStatus(models.GoalPaused)
		paused.CreatedAt = active.CreatedAt.Add(time.Minute)
		require.NoError(t, repo.CreateGoal(ctx, paused))

		all, err := repo.ListGoals(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, paused.ID, all[0].ID)

		status := models.GoalActive
		onlyActive, err := repo.ListGoals(ctx, &status)
		require.NoError(t, err)
		require.Len(t, onlyActive, 1)
		assert.Equal(t, active.ID, onlyActive[0].ID)
		require.NotNil(t, onlyActive[0].Deadline)
		assert.True(t, onlyActive[0].Deadline.Equal(day("2026-06-01")))

		updated, err := repo.UpdateGoal(ctx, active.ID.String(), models.GoalPatch{
			CurrentValue: models.Value(77.5),
			Status:       models.Value(models.GoalCompleted),
			Deadline:     models.Null[time.Time](),
		})
		require.NoError(t, err)
		assert.InDelta(t, 77.5, updated.CurrentValue, 1e-9)
		assert.Equal(t, models.GoalCompleted, updated.Status)
		assert.Nil(t, updated.Deadline)
		assert.True(t, updated.CreatedAt.Equal(active.CreatedAt))

		_, err = repo.UpdateGoal(ctx, active.ID.String(), models.GoalPatch{Status: models.Value(models.GoalStatus("done"))})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		require.NoError(t, repo.DeleteGoal(ctx, paused.ID.String()))
		all, err = repo.ListGoals(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestPRsAndMarkSeen(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

		first := models.NewPR("Bench", models.PRTypeMaxWeight, 80).WithDate(base)
		second := models.NewPR("Bench", models.PRTypeMaxWeight, 85).WithDate(base.AddDate(0, 0, 7))
		lower := models.NewPR("bench", models.PRTypeMaxWeight, 100).WithDate(base.AddDate(0, 0, 2))
		squat := models.NewPR("Squat", "max_reps", 12).WithDate(base.AddDate(0, 0, 1))
		for _, p := range []*models.PR{first, second, lower, squat} {
			require.NoError(t, repo.CreatePR(ctx, p))
		}

		bench, err := repo.ListPRs(ctx, "Bench", models.PRTypeMaxWeight)
		require.NoError(t, err)
		require.Len(t, bench, 2, "exercise names match exactly")
		assert.Equal(t, second.ID, bench[0].ID)
		assert.True(t, bench[0].IsNew)

		all, err := repo.ListPRs(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, all, 4)

		n, err := repo.MarkPRsSeen(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		got, err := repo.GetPR(ctx, first.ID.String()[:8])
		require.NoError(t, err)
		assert.False(t, got.IsNew)

		n, err = repo.MarkPRsSeen(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, repo.DeletePR(ctx, squat.ID.String()))
		_, err = repo.GetPR(ctx, squat.ID.String())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestSettings(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		_, err := repo.GetSetting(ctx, "height_cm")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, repo.SetSetting(ctx, "height_cm", "180"))
		require.NoError(t, repo.SetSetting(ctx, "units", "metric"))
		require.NoError(t, repo.SetSetting(ctx, "height_cm", "181"))

		v, err := repo.GetSetting(ctx, "height_cm")
		require.NoError(t, err)
		assert.Equal(t, "181", v)

		all, err := repo.ListSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Setting{{Key: "height_cm", Value: "181"}, {Key: "units", Value: "metric"}}, all)

		require.NoError(t, repo.DeleteSetting(ctx, "units"))
		assert.ErrorIs(t, repo.DeleteSetting(ctx, "units"), apperr.ErrNotFound)
		assert.ErrorIs(t, repo.SetSetting(ctx, " ", "x"), apperr.ErrValidation)
	})
}

func TestPrefixResolution(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		a := models.NewCheckIn(day("2026-03-01"), 180, 80)
		a.ID = uuid.MustParse("abcdef00-0000-4000-8000-000000000001")
		b := models.NewCheckIn(day("2026-03-02"), 180, 80)
		b.ID = uuid.MustParse("abcdef00-0000-4000-8000-000000000002")
		require.NoError(t, repo.CreateCheckIn(ctx, a))
		require.NoError(t, repo.CreateCheckIn(ctx, b))

		_, err := repo.GetCheckIn(ctx, "abcdef00")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Contains(t, err.Error(), "ambiguous")

		got, err := repo.GetCheckIn(ctx, "ABCDEF00-0000-4000-8000-00000000000")
		require.Error(t, err)
		assert.Nil(t, got)

		got, err = repo.GetCheckIn(ctx, "abcdef00-0000-4000-8000-000000000002")
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)

		_, err = repo.GetCheckIn(ctx, "not-an-id!")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteCheckIn(ctx, "ffffffff"), apperr.ErrNotFound)
	})
}

func TestQueryTiesBreakByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		a := models.NewCheckIn(day("2026-03-01"), 180, 80)
		a.ID = uuid.MustParse("00000000-0000-4000-8000-000000000001")
		b := models.NewCheckIn(day("2026-03-01"), 180, 81)
		b.ID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
		require.NoError(t, repo.CreateCheckIn(ctx, b))
		require.NoError(t, repo.CreateCheckIn(ctx, a))

		newest, err := repo.ListCheckIns(ctx, Query{})
		require.NoError(t, err)
		require.Len(t, newest, 2)
		assert.Equal(t, b.ID, newest[0].ID)

		oldest, err := repo.ListCheckIns(ctx, Query{Order: Oldest})
		require.NoError(t, err)
		require.Len(t, oldest, 2)
		assert.Equal(t, a.ID, oldest[0].ID)
	})
}

func TestCreateDuplicateIDFails(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		a := models.NewMeal(models.MealSnack)
		require.NoError(t, repo.CreateMeal(ctx, a))
		dup := models.NewMeal(models.MealSnack)
		dup.ID = a.ID
		assert.ErrorIs(t, repo.CreateMeal(ctx, dup), apperr.ErrIntegrity)
	})
}
