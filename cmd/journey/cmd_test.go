// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands end to end against a temp data directory and checks the stored records.
package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "date and time with space", input: "2026-01-31 08:30", want: time.Date(2026, 1, 31, 8, 30, 0, 0, time.UTC)},
		{name: "date and time with T", input: "2026-01-31T08:30", want: time.Date(2026, 1, 31, 8, 30, 0, 0, time.UTC)},
		{name: "date only", input: "2026-01-31", want: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		{name: "RFC3339", input: "2026-01-31T08:30:00Z", want: time.Date(2026, 1, 31, 8, 30, 0, 0, time.UTC)},
		{name: "RFC3339 with offset", input: "2026-01-31T08:30:00+05:00", want: time.Date(2026, 1, 31, 3, 30, 0, 0, time.UTC)},
		{name: "invalid format", input: "31-01-2026", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "parseTime(%q) = %v, want %v", tt.input, got, tt.want)
		})
	}
}

func TestParseDayOr(t *testing.T) {
	now := time.Date(2026, 3, 11, 22, 15, 0, 0, time.UTC)

	d, err := parseDayOr("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDayOr("2026-02-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDayOr("02/01/2026", now)
	assert.ErrorContains(t, err, "invalid date format")
}

func TestUnsetFields(t *testing.T) {
	got := unsetFields(" waist, notes ,,")
	assert.Equal(t, map[string]bool{"waist": true, "notes": true}, got)
	assert.Empty(t, unsetFields(""))
}

func TestTruncateAndPadRight(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello w...", truncate("hello world again", 10))
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", progressBar(50, 10))
	assert.Equal(t, "██████████", progressBar(100, 10))
	assert.Equal(t, "░░░░░░░░░░", progressBar(0, 10))
}

func TestCommandTree(t *testing.T) {
	assert.Equal(t, "journey", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Long)

	want := map[string][]string{
		"checkin":  {"add", "delete", "list", "update"},
		"meal":     {"add", "delete", "list", "totals", "update"},
		"gym":      {"add", "delete", "list", "show", "streak", "update", "week"},
		"exercise": {"add", "delete", "history", "update"},
		"habit":    {"delete", "list", "log", "show"},
		"goal":     {"add", "delete", "list", "update"},
		"pr":       {"check", "list", "seen"},
		"settings": {"delete", "get", "list", "set"},
	}
	for parent, subs := range want {
		cmd, _, err := rootCmd.Find([]string{parent})
		require.NoError(t, err, parent)
		var names []string
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		assert.ElementsMatch(t, subs, names, parent)
	}

	for _, name := range []string{"dashboard", "plateau", "export", "import", "clear", "migrate", "mcp", "install-skill"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Short, name)
	}
}

func TestListCmdDefaults(t *testing.T) {
	assert.Equal(t, "20", checkinListCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "20", mealListCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "20", gymListCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "14", habitListCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "5", gymAddCmd.Flags().Lookup("intensity").DefValue)
	assert.Equal(t, models.PRTypeMaxWeight, prCheckCmd.Flags().Lookup("type").DefValue)
	assert.ElementsMatch(t, []string{"json", "yaml", "markdown"}, exportCmd.ValidArgs)
}

// setupTestCLI points config and data at temp dirs and returns the data dir.
func setupTestCLI(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("JOURNEY_DATA_DIR", dataDir)
	for _, key := range []string{"JOURNEY_BACKEND", "JOURNEY_LOG_FILE", "JOURNEY_LOG_LEVEL", "JOURNEY_LOG_JSON"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Cleanup(func() { _ = closeRepo() })
	return dataDir
}

// resetFlags restores every flag to its default so earlier runs don't leak.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return Execute()
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	require.NoError(t, runCLI(t, args...), strings.Join(args, " "))
}

// withRepo opens the test database, hands it to fn, and closes it again
// before the next command runs.
func withRepo(t *testing.T, dataDir string, fn func(ctx context.Context, r storage.Repository)) {
	t.Helper()
	r, err := storage.Open(filepath.Join(dataDir, "journey.db"))
	require.NoError(t, err)
	defer r.Close()
	fn(context.Background(), r)
}

func TestCheckinAddRequiresHeight(t *testing.T) {
	setupTestCLI(t)

	err := runCLI(t, "checkin", "add", "82.5")
	assert.ErrorContains(t, err, "no height known")
}

func TestCheckinAddAndDefaultHeight(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "checkin", "add", "82.5", "--height", "180", "--date", "2026-03-01", "--waist", "90")
	mustRun(t, "checkin", "add", "81.0", "--date", "2026-03-08")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		checkIns, err := r.ListCheckIns(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, checkIns, 2)
		assert.Equal(t, 81.0, checkIns[0].WeightKg)
		assert.Equal(t, 180.0, checkIns[0].HeightCm)
		assert.Equal(t, 25.0, checkIns[0].BMI)
		assert.Nil(t, checkIns[0].WaistCm)
		require.NotNil(t, checkIns[1].WaistCm)
		assert.Equal(t, 90.0, *checkIns[1].WaistCm)
	})
}

func TestCheckinAddUsesHeightSetting(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "settings", "set", heightSettingKey, "175")
	mustRun(t, "checkin", "add", "70")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		checkIns, err := r.ListCheckIns(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, checkIns, 1)
		assert.Equal(t, 175.0, checkIns[0].HeightCm)
		assert.Equal(t, models.BMINormal, checkIns[0].BMICategory)
	})
}

func TestCheckinUpdateAndUnset(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "checkin", "add", "82.5", "--height", "180", "--waist", "90", "--notes", "morning")

	var id string
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		checkIns, err := r.ListCheckIns(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, checkIns, 1)
		id = checkIns[0].ID.String()
	})

	mustRun(t, "checkin", "update", id[:8], "--weight", "97.2", "--unset", "waist,notes")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		c, err := r.GetCheckIn(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 97.2, c.WeightKg)
		assert.Equal(t, 30.0, c.BMI)
		assert.Equal(t, models.BMIObese, c.BMICategory)
		assert.Nil(t, c.WaistCm)
		assert.Nil(t, c.Notes)
	})

	mustRun(t, "checkin", "delete", id[:8])
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		checkIns, err := r.ListCheckIns(ctx, storage.Query{})
		require.NoError(t, err)
		assert.Empty(t, checkIns)
	})
}

func TestMealAddAndTotals(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "meal", "add", "lunch", "--kcal", "650", "--protein", "40", "--at", "2026-03-10 12:30", "--water", "300")
	mustRun(t, "meal", "add", "snack", "--kcal", "150", "--protein", "5", "--at", "2026-03-10 16:00")
	mustRun(t, "meal", "add", "dinner", "--kcal", "900", "--at", "2026-03-11 19:00")
	mustRun(t, "meal", "totals", "--date", "2026-03-10")
	mustRun(t, "meal", "list", "--since", "2026-03-11")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		meals, err := r.ListMeals(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, meals, 3)
		assert.Equal(t, models.MealDinner, meals[0].MealType)
		require.NotNil(t, meals[2].WaterMl)
		assert.Equal(t, 300, *meals[2].WaterMl)
	})
}

func TestMealAddInvalidType(t *testing.T) {
	setupTestCLI(t)

	err := runCLI(t, "meal", "add", "brunch", "--kcal", "500")
	assert.ErrorContains(t, err, "unknown meal type")
}

func TestMealAddNegativeCalories(t *testing.T) {
	setupTestCLI(t)

	err := runCLI(t, "meal", "add", "lunch", "--kcal=-5")
	assert.ErrorContains(t, err, "calories must not be negative")
}

func TestGymSessionWithExercisesAndPRs(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "gym", "add", "strength", "--duration", "60", "--notes", "push day")

	var sessionID string
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		sessions, err := r.ListGymSessions(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, models.DefaultIntensity, sessions[0].Intensity)
		sessionID = sessions[0].ID.String()
	})

	mustRun(t, "exercise", "add", sessionID[:8], "Bench Press", "--sets", "3", "--reps", "5", "--weight", "80")
	mustRun(t, "exercise", "add", sessionID[:8], "Bench Press", "--sets", "3", "--reps", "5", "--weight", "75")
	mustRun(t, "exercise", "add", sessionID[:8], "Bench Press", "--sets", "1", "--reps", "3", "--weight", "85", "--rest", "180")
	mustRun(t, "gym", "show", sessionID[:8])
	mustRun(t, "exercise", "history", "Bench Press")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		s, err := r.GetGymSessionWithExercises(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, s.Exercises, 3)

		prs, err := r.ListPRs(ctx, "Bench Press", models.PRTypeMaxWeight)
		require.NoError(t, err)
		require.Len(t, prs, 2)
		var best float64
		for _, p := range prs {
			best = max(best, p.Value)
			assert.True(t, p.IsNew)
		}
		assert.Equal(t, 85.0, best)
	})

	mustRun(t, "gym", "delete", sessionID[:8])
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		exercises, err := r.ListExercisesByName(ctx, "Bench Press")
		require.NoError(t, err)
		assert.Empty(t, exercises)
	})
}

func TestGymAddValidation(t *testing.T) {
	setupTestCLI(t)

	assert.ErrorContains(t, runCLI(t, "gym", "add", "yoga"), "unknown workout type")
	assert.Error(t, runCLI(t, "gym", "add", "strength", "--intensity", "11"))
	assert.Error(t, runCLI(t, "exercise", "add", "deadbeef", "Squat", "--sets", "5"))
}

func TestGymWeekAndStreak(t *testing.T) {
	setupTestCLI(t)

	mustRun(t, "gym", "add", "cardio", "--cardio", "rowing", "--cardio-min", "20", "--at", "2026-03-09 07:00")
	mustRun(t, "gym", "add", "strength", "--at", "2026-03-10 18:00")
	mustRun(t, "gym", "week", "--start", "2026-03-09")
	mustRun(t, "gym", "streak")
	assert.Error(t, runCLI(t, "gym", "week", "--start", "March 9"))
}

func TestHabitLogMerges(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "habit", "log", "--date", "2026-03-10", "--water", "2500", "--creatine")
	mustRun(t, "habit", "log", "--date", "2026-03-10", "--steps", "5000")
	mustRun(t, "habit", "show", "2026-03-10")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		habits, err := r.ListHabits(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, habits, 1)
		h := habits[0]
		require.NotNil(t, h.WaterMl)
		assert.Equal(t, 2500, *h.WaterMl)
		require.NotNil(t, h.Steps)
		assert.Equal(t, 5000, *h.Steps)
		require.NotNil(t, h.Creatine)
		assert.True(t, *h.Creatine)
		assert.Equal(t, 67, h.Score)
	})
}

func TestHabitLogRequiresAValue(t *testing.T) {
	setupTestCLI(t)

	assert.ErrorContains(t, runCLI(t, "habit", "log"), "nothing to log")
	assert.Error(t, runCLI(t, "habit", "log", "--sleep", "25"))
}

func TestGoalLifecycle(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "goal", "add", "bench_press", "100", "--current", "80", "--deadline", "2026-06-30")

	var id string
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		goals, err := r.ListGoals(ctx, nil)
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, models.GoalActive, goals[0].Status)
		require.NotNil(t, goals[0].Deadline)
		id = goals[0].ID.String()
	})

	mustRun(t, "goal", "update", id[:8], "--current", "100", "--status", "completed", "--unset", "deadline")
	mustRun(t, "goal", "list", "--status", "completed")
	assert.ErrorContains(t, runCLI(t, "goal", "list", "--status", "done"), "unknown goal status")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		g, err := r.GetGoal(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 100.0, g.CurrentValue)
		assert.Equal(t, models.GoalCompleted, g.Status)
		assert.Nil(t, g.Deadline)
	})
}

func TestPRCheckAndSeen(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "pr", "check", "5k Run", "1320", "--type", "distance_m")
	mustRun(t, "pr", "check", "5k Run", "1200", "--type", "distance_m")
	mustRun(t, "pr", "check", "5k Run", "1400", "--type", "distance_m", "--notes", "windy")
	mustRun(t, "pr", "list", "--exercise", "5k Run")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		prs, err := r.ListPRs(ctx, "5k Run", "distance_m")
		require.NoError(t, err)
		assert.Len(t, prs, 2)
	})

	mustRun(t, "pr", "seen")
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		prs, err := r.ListPRs(ctx, "", "")
		require.NoError(t, err)
		for _, p := range prs {
			assert.False(t, p.IsNew)
		}
	})

	assert.ErrorContains(t, runCLI(t, "pr", "check", "5k Run", "fast"), "invalid value")
}

func TestSettingsCommands(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "settings", "set", "height_cm", "180")
	mustRun(t, "settings", "set", "height_cm", "181")
	mustRun(t, "settings", "get", "height_cm")
	mustRun(t, "settings", "list")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		v, err := r.GetSetting(ctx, "height_cm")
		require.NoError(t, err)
		assert.Equal(t, "181", v)
	})

	mustRun(t, "settings", "delete", "height_cm")
	assert.ErrorContains(t, runCLI(t, "settings", "get", "height_cm"), "setting not found")
	assert.ErrorContains(t, runCLI(t, "settings", "delete", "height_cm"), "setting not found")
}

func TestDashboardAndPlateau(t *testing.T) {
	setupTestCLI(t)

	mustRun(t, "dashboard")
	mustRun(t, "plateau")

	mustRun(t, "checkin", "add", "80.0", "--height", "180", "--date", "2026-03-01")
	mustRun(t, "checkin", "add", "80.1", "--date", "2026-03-02")
	mustRun(t, "checkin", "add", "80.2", "--date", "2026-03-03")
	mustRun(t, "goal", "add", "weight_loss", "10", "--current", "2")
	mustRun(t, "plateau")
	mustRun(t, "dashboard")
}

func TestExportImportRoundTrip(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "checkin", "add", "82.5", "--height", "180", "--date", "2026-03-01")
	mustRun(t, "meal", "add", "breakfast", "--kcal", "400", "--at", "2026-03-01 08:00")
	mustRun(t, "gym", "add", "strength", "--at", "2026-03-01 18:00")
	mustRun(t, "settings", "set", "height_cm", "180")

	var sessionID string
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		sessions, err := r.ListGymSessions(ctx, storage.Query{})
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		sessionID = sessions[0].ID.String()
	})
	mustRun(t, "exercise", "add", sessionID, "Squat", "--sets", "5", "--reps", "5", "--weight", "100")

	out := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, "export", "json", "-o", out)
	mustRun(t, "export", "yaml", "-o", filepath.Join(t.TempDir(), "backup.yaml"))
	mustRun(t, "export", "markdown", "--since", "2026-01-01")

	withStdin(t, "yes\n")
	mustRun(t, "clear")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		data, err := r.Export(ctx)
		require.NoError(t, err)
		counts := data.Counts()
		for _, name := range []string{"checkIns", "meals", "gymSessions", "exercises", "prs"} {
			assert.Zero(t, counts[name], name)
		}
		assert.Equal(t, 1, counts["settings"])
	})

	mustRun(t, "import", out)

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		data, err := r.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			"checkIns": 1, "meals": 1, "gymSessions": 1, "exercises": 1,
			"habits": 0, "goals": 0, "prs": 1, "settings": 1,
		}, data.Counts())

		s, err := r.GetGymSessionWithExercises(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, s.Exercises, 1)
		assert.Equal(t, 2500.0, s.Exercises[0].Volume)
	})

	// Importing again replaces by ID rather than duplicating.
	mustRun(t, "import", out)
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		checkIns, err := r.ListCheckIns(ctx, storage.Query{})
		require.NoError(t, err)
		assert.Len(t, checkIns, 1)
	})
}

func TestExportErrors(t *testing.T) {
	setupTestCLI(t)

	assert.ErrorContains(t, runCLI(t, "export", "csv"), "unknown format")
	assert.ErrorContains(t, runCLI(t, "export", "markdown", "--since", "yesterday"), "invalid date format")
}

func TestImportErrors(t *testing.T) {
	setupTestCLI(t)

	assert.ErrorContains(t, runCLI(t, "import", "/nonexistent/file.json"), "failed to read file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not valid json"), 0644))
	assert.ErrorContains(t, runCLI(t, "import", bad), "import failed")
}

func TestClearDeclined(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "meal", "add", "lunch", "--kcal", "500")
	withStdin(t, "n\n")
	mustRun(t, "clear")

	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		meals, err := r.ListMeals(ctx, storage.Query{})
		require.NoError(t, err)
		assert.Len(t, meals, 1)
	})

	mustRun(t, "clear", "--yes")
	withRepo(t, dataDir, func(ctx context.Context, r storage.Repository) {
		meals, err := r.ListMeals(ctx, storage.Query{})
		require.NoError(t, err)
		assert.Empty(t, meals)
	})
}

func TestMigrateToBadger(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "checkin", "add", "82.5", "--height", "180")
	mustRun(t, "settings", "set", "height_cm", "180")

	assert.ErrorContains(t, runCLI(t, "migrate", "--to", "sqlite"), "already using sqlite")
	assert.ErrorContains(t, runCLI(t, "migrate", "--to", "postgres"), "unknown backend")
	assert.Error(t, runCLI(t, "migrate"), "--to is required")

	mustRun(t, "migrate", "--to", "badger")

	kvPath := filepath.Join(dataDir, "kv")
	kv, err := storage.OpenKV(kvPath)
	require.NoError(t, err)
	checkIns, err := kv.ListCheckIns(context.Background(), storage.Query{})
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	assert.Equal(t, 82.5, checkIns[0].WeightKg)
	v, err := kv.GetSetting(context.Background(), "height_cm")
	require.NoError(t, err)
	assert.Equal(t, "180", v)
	require.NoError(t, kv.Close())

	assert.ErrorContains(t, runCLI(t, "migrate", "--to", "badger"), "already has data")
	mustRun(t, "migrate", "--to", "badger", "--force", "--switch")

	t.Setenv("JOURNEY_BACKEND", "badger")
	mustRun(t, "checkin", "list")
}
