// ABOUTME: Aggregation queries over a Repository: plateau, totals, weekly count, streak, goals.
// ABOUTME: Also owns PR check-and-add and exercise logging with automatic PR detection.
package tracker

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

// AutoPRNote is attached to PRs recorded while logging an exercise.
const AutoPRNote = "Auto-detected PR"

// Service answers aggregate questions by loading records from a Repository
// and reducing them with the metrics package.
type Service struct {
	repo storage.Repository
	now  func() time.Time
}

// New creates a Service over repo using the wall clock.
func New(repo storage.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the clock used for "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Repository returns the underlying store.
func (s *Service) Repository() storage.Repository {
	return s.repo
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// GoalProgress pairs a goal with its completion percentage.
type GoalProgress struct {
	Goal     *models.Goal `json:"goal"`
	Progress float64      `json:"progress"`
}

// ExerciseResult is the outcome of logging an exercise. PR is nil when the
// exercise did not beat the previous best.
type ExerciseResult struct {
	Exercise *models.Exercise `json:"exercise"`
	PR       *models.PR       `json:"pr,omitempty"`
}

// CheckAndAddPR records a new PR when value strictly beats every earlier PR
// of the same exercise and type. It returns the new PR, or nil if none was
// recorded. Earlier PRs are kept as history.
func (s *Service) CheckAndAddPR(ctx context.Context, exerciseName, prType string, value float64, notes string) (*models.PR, error) {
	existing, err := s.repo.ListPRs(ctx, exerciseName, prType)
	if err != nil {
		return nil, fmt.Errorf("list PRs: %w", err)
	}
	if !metrics.IsNewPR(values(existing), value) {
		return nil, nil
	}

	pr := models.NewPR(exerciseName, prType, value).WithDate(s.now())
	if notes != "" {
		pr.WithNotes(notes)
	}
	if err := s.repo.CreatePR(ctx, pr); err != nil {
		return nil, fmt.Errorf("create PR: %w", err)
	}
	log.Debugf("tracker: new %s PR for %s: %.2f", prType, exerciseName, value)
	return pr, nil
}

// LogExercise stores e and checks it for a max-weight PR. Bodyweight entries
// (0 kg) are checked too, so the first one sets a baseline.
func (s *Service) LogExercise(ctx context.Context, e *models.Exercise) (*ExerciseResult, error) {
	if err := s.repo.CreateExercise(ctx, e); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	result := &ExerciseResult{Exercise: e}
	pr, err := s.CheckAndAddPR(ctx, e.ExerciseName, models.PRTypeMaxWeight, e.WeightKg, AutoPRNote)
	if err != nil {
		return nil, err
	}
	result.PR = pr
	return result, nil
}

// ExerciseHistory lists every logged instance of the named exercise,
// most recent session first.
func (s *Service) ExerciseHistory(ctx context.Context, name string) ([]*models.Exercise, error) {
	history, err := s.repo.ListExercisesByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list exercise history: %w", err)
	}
	return history, nil
}

// Plateau reports whether the most recent check-ins show a weight stall.
func (s *Service) Plateau(ctx context.Context) (bool, error) {
	recent, err := s.repo.ListCheckIns(ctx, storage.Query{Limit: metrics.PlateauWindow})
	if err != nil {
		return false, fmt.Errorf("list check-ins: %w", err)
	}
	return metrics.DetectPlateau(values(recent)), nil
}

// DailyTotals sums nutrition for the UTC calendar day containing day.
func (s *Service) DailyTotals(ctx context.Context, day time.Time) (metrics.Totals, error) {
	start := models.Day(day)
	meals, err := s.repo.ListMeals(ctx, storage.Between(start, start.AddDate(0, 0, 1)))
	if err != nil {
		return metrics.Totals{}, fmt.Errorf("list meals: %w", err)
	}
	return metrics.DailyTotals(values(meals), start), nil
}

// WeeklyGymCount counts sessions in [weekStart, weekStart+7d).
func (s *Service) WeeklyGymCount(ctx context.Context, weekStart time.Time) (int, error) {
	sessions, err := s.repo.ListGymSessions(ctx, storage.Between(weekStart, weekStart.AddDate(0, 0, 7)))
	if err != nil {
		return 0, fmt.Errorf("list gym sessions: %w", err)
	}
	return metrics.WeeklyGymCount(values(sessions), weekStart), nil
}

// GymStreak counts consecutive gym days walking back from today.
func (s *Service) GymStreak(ctx context.Context) (int, error) {
	sessions, err := s.repo.ListGymSessions(ctx, storage.Query{})
	if err != nil {
		return 0, fmt.Errorf("list gym sessions: %w", err)
	}
	return metrics.GymStreak(values(sessions), s.now()), nil
}

// Goals lists goals with their progress, optionally filtered by status.
func (s *Service) Goals(ctx context.Context, status *models.GoalStatus) ([]GoalProgress, error) {
	goals, err := s.repo.ListGoals(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return WithProgress(goals), nil
}

// WithProgress computes progress for each goal.
func WithProgress(goals []*models.Goal) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalProgress{Goal: g, Progress: metrics.GoalProgress(*g)})
	}
	return out
}

// MarkPRsSeen clears the new flag on every PR.
func (s *Service) MarkPRsSeen(ctx context.Context) (int, error) {
	n, err := s.repo.MarkPRsSeen(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark PRs seen: %w", err)
	}
	return n, nil
}

// values dereferences a slice of records for the pure metric functions.
func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}
