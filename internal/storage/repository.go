// ABOUTME: Repository interface for journey data storage.
// ABOUTME: Defines the CRUD, query and bulk contract shared by the SQLite and Badger backends.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/journey/internal/models"
)

// Order selects chronological sort direction for list queries.
type Order int

const (
	// Newest lists the most recent record first. It is the default.
	Newest Order = iota
	// Oldest lists the earliest record first.
	Oldest
)

// Query narrows a list operation. From and To bound the record's date or
// datetime as a half-open range [From, To). A Limit of 0 means no limit.
type Query struct {
	From  *time.Time
	To    *time.Time
	Order Order
	Limit int
}

// Since returns a query for records at or after t, newest first.
func Since(t time.Time) Query {
	return Query{From: &t}
}

// Between returns a query for records in [from, to), newest first.
func Between(from, to time.Time) Query {
	return Query{From: &from, To: &to}
}

// Repository defines the storage interface for journey data.
// Every get, update and delete accepts a full UUID or a unique prefix.
type Repository interface {
	// Check-ins
	CreateCheckIn(ctx context.Context, c *models.CheckIn) error
	GetCheckIn(ctx context.Context, idOrPrefix string) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, q Query) ([]*models.CheckIn, error)
	UpdateCheckIn(ctx context.Context, idOrPrefix string, p models.CheckInPatch) (*models.CheckIn, error)
	DeleteCheckIn(ctx context.Context, idOrPrefix string) error

	// Meals
	CreateMeal(ctx context.Context, m *models.Meal) error
	GetMeal(ctx context.Context, idOrPrefix string) (*models.Meal, error)
	ListMeals(ctx context.Context, q Query) ([]*models.Meal, error)
	UpdateMeal(ctx context.Context, idOrPrefix string, p models.MealPatch) (*models.Meal, error)
	DeleteMeal(ctx context.Context, idOrPrefix string) error

	// Gym sessions. Deleting a session deletes its exercises atomically.
	CreateGymSession(ctx context.Context, s *models.GymSession) error
	GetGymSession(ctx context.Context, idOrPrefix string) (*models.GymSession, error)
	GetGymSessionWithExercises(ctx context.Context, idOrPrefix string) (*models.GymSession, error)
	ListGymSessions(ctx context.Context, q Query) ([]*models.GymSession, error)
	UpdateGymSession(ctx context.Context, idOrPrefix string, p models.GymSessionPatch) (*models.GymSession, error)
	DeleteGymSession(ctx context.Context, idOrPrefix string) error

	// Exercises
	CreateExercise(ctx context.Context, e *models.Exercise) error
	GetExercise(ctx context.Context, idOrPrefix string) (*models.Exercise, error)
	ListExercisesBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Exercise, error)
	ListExercisesByName(ctx context.Context, name string) ([]*models.Exercise, error)
	UpdateExercise(ctx context.Context, idOrPrefix string, p models.ExercisePatch) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, idOrPrefix string) error

	// Habits. Date is a unique natural key.
	CreateHabit(ctx context.Context, h *models.Habit) error
	GetHabit(ctx context.Context, idOrPrefix string) (*models.Habit, error)
	GetHabitByDate(ctx context.Context, day time.Time) (*models.Habit, error)
	ListHabits(ctx context.Context, q Query) ([]*models.Habit, error)
	UpdateHabit(ctx context.Context, idOrPrefix string, p models.HabitPatch) (*models.Habit, error)
	DeleteHabit(ctx context.Context, idOrPrefix string) error

	// Goals. A nil status lists every goal.
	CreateGoal(ctx context.Context, g *models.Goal) error
	GetGoal(ctx context.Context, idOrPrefix string) (*models.Goal, error)
	ListGoals(ctx context.Context, status *models.GoalStatus) ([]*models.Goal, error)
	UpdateGoal(ctx context.Context, idOrPrefix string, p models.GoalPatch) (*models.Goal, error)
	DeleteGoal(ctx context.Context, idOrPrefix string) error

	// PRs. Empty exerciseName or prType matches any.
	CreatePR(ctx context.Context, p *models.PR) error
	GetPR(ctx context.Context, idOrPrefix string) (*models.PR, error)
	ListPRs(ctx context.Context, exerciseName, prType string) ([]*models.PR, error)
	DeletePR(ctx context.Context, idOrPrefix string) error
	MarkPRsSeen(ctx context.Context) (int, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
	DeleteSetting(ctx context.Context, key string) error

	// Bulk
	Export(ctx context.Context) (*ExportData, error)
	Import(ctx context.Context, data *ExportData) error
	ClearAll(ctx context.Context) error

	// Lifecycle
	Close() error
}
