// ABOUTME: Application state facade: cached snapshots of each collection for presentation.
// ABOUTME: Reads return the last refreshed snapshot; callers refresh explicitly after writes.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/cache"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
	"github.com/harperreed/journey/internal/tracker"
)

// MealWindow is how far back the meal snapshot reaches.
const MealWindow = 30 * 24 * time.Hour

const (
	checkInsKey    = "checkins"
	mealsKey       = "meals"
	gymSessionsKey = "gym-sessions"
	todayHabitKey  = "today-habit"
	goalsKey       = "goals"
	prsKey         = "prs"
)

// Facade caches the collections a presentation layer shows. Nothing is
// reloaded implicitly: a getter returns whatever the last Refresh stored,
// which may be stale or empty.
type Facade struct {
	svc   *tracker.Service
	cache cache.Cache
}

// New creates a facade over svc using c for snapshots.
func New(svc *tracker.Service, c cache.Cache) *Facade {
	return &Facade{svc: svc, cache: c}
}

// Service returns the tracker the facade reads through.
func (f *Facade) Service() *tracker.Service {
	return f.svc
}

func (f *Facade) repo() storage.Repository {
	return f.svc.Repository()
}

func (f *Facade) store(key string, value interface{}, cost int) {
	if cost < 1 {
		cost = 1
	}
	if !f.cache.Set(key, value, int64(cost)) {
		log.Warnf("state: failed to cache %s snapshot", key)
		return
	}
	log.Debugf("state: cached %s snapshot (%d)", key, cost)
}

func snapshot[T any](f *Facade, key string) T {
	var zero T
	v, found := f.cache.Get(key)
	if !found {
		return zero
	}
	typed, ok := v.(T)
	if !ok {
		log.Warnf("state: unexpected %T in %s snapshot", v, key)
		return zero
	}
	return typed
}

// CheckIns returns the cached check-ins, newest first.
func (f *Facade) CheckIns() []*models.CheckIn {
	return snapshot[[]*models.CheckIn](f, checkInsKey)
}

// Meals returns the cached meals from the trailing MealWindow, newest first.
func (f *Facade) Meals() []*models.Meal {
	return snapshot[[]*models.Meal](f, mealsKey)
}

// GymSessions returns the cached gym sessions, newest first.
func (f *Facade) GymSessions() []*models.GymSession {
	return snapshot[[]*models.GymSession](f, gymSessionsKey)
}

// TodayHabit returns the cached habit log for today, or nil.
func (f *Facade) TodayHabit() *models.Habit {
	return snapshot[*models.Habit](f, todayHabitKey)
}

// Goals returns the cached goals.
func (f *Facade) Goals() []*models.Goal {
	return snapshot[[]*models.Goal](f, goalsKey)
}

// PRs returns the cached personal records, newest first.
func (f *Facade) PRs() []*models.PR {
	return snapshot[[]*models.PR](f, prsKey)
}

// RefreshCheckIns reloads the check-in snapshot.
func (f *Facade) RefreshCheckIns(ctx context.Context) error {
	items, err := f.repo().ListCheckIns(ctx, storage.Query{})
	if err != nil {
		return fmt.Errorf("refresh check-ins: %w", err)
	}
	f.store(checkInsKey, items, len(items))
	return nil
}

// RefreshMeals reloads meals eaten within MealWindow of now.
func (f *Facade) RefreshMeals(ctx context.Context) error {
	items, err := f.repo().ListMeals(ctx, storage.Since(f.svc.Now().Add(-MealWindow)))
	if err != nil {
		return fmt.Errorf("refresh meals: %w", err)
	}
	f.store(mealsKey, items, len(items))
	return nil
}

// RefreshGymSessions reloads the gym session snapshot.
func (f *Facade) RefreshGymSessions(ctx context.Context) error {
	items, err := f.repo().ListGymSessions(ctx, storage.Query{})
	if err != nil {
		return fmt.Errorf("refresh gym sessions: %w", err)
	}
	f.store(gymSessionsKey, items, len(items))
	return nil
}

// RefreshHabits reloads today's habit log.
func (f *Facade) RefreshHabits(ctx context.Context) error {
	h, err := f.repo().GetHabitByDate(ctx, f.svc.Now())
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("refresh habits: %w", err)
	}
	f.store(todayHabitKey, h, 1)
	return nil
}

// RefreshGoals reloads the goal snapshot.
func (f *Facade) RefreshGoals(ctx context.Context) error {
	items, err := f.repo().ListGoals(ctx, nil)
	if err != nil {
		return fmt.Errorf("refresh goals: %w", err)
	}
	f.store(goalsKey, items, len(items))
	return nil
}

// RefreshPRs reloads the PR snapshot.
func (f *Facade) RefreshPRs(ctx context.Context) error {
	items, err := f.repo().ListPRs(ctx, "", "")
	if err != nil {
		return fmt.Errorf("refresh PRs: %w", err)
	}
	f.store(prsKey, items, len(items))
	return nil
}

// RefreshAll reloads every snapshot, stopping at the first failure.
func (f *Facade) RefreshAll(ctx context.Context) error {
	for _, refresh := range []func(context.Context) error{
		f.RefreshCheckIns,
		f.RefreshMeals,
		f.RefreshGymSessions,
		f.RefreshHabits,
		f.RefreshGoals,
		f.RefreshPRs,
	} {
		if err := refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops every snapshot.
func (f *Facade) Invalidate() {
	f.cache.Clear()
}
