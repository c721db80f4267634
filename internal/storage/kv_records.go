// ABOUTME: Repository CRUD for the Badger backend, one block per collection.
// ABOUTME: Cascades and uniqueness checks run inside the same badger transaction as the write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

// kvCreate stores a prepared record unless its key is already taken.
func (s *KVStore) kvCreate(op string, key []byte, v any, checks ...func(*badger.Txn) error) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := kvExists(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Integrity(op, fmt.Errorf("record %s already exists", key))
		}
		for _, check := range checks {
			if err := check(txn); err != nil {
				return err
			}
		}
		return kvPut(txn, key, v)
	})
	if err != nil {
		return wrapKV(op, err)
	}
	log.Debugf("storage: %s %s", op, key)
	return nil
}

// kvUpdate loads, patches and rewrites one record in a single transaction.
func kvUpdate[T any](s *KVStore, prefix, op, idOrPrefix string, patch func(*badger.Txn, *T) error) (*T, error) {
	var out *T
	err := s.db.Update(func(txn *badger.Txn) error {
		v, key, err := kvFetch[T](txn, prefix, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patch(txn, v); err != nil {
			return err
		}
		out = v
		return kvPut(txn, key, v)
	})
	if err != nil {
		return nil, wrapKV(op, err)
	}
	log.Debugf("storage: %s %s", op, idOrPrefix)
	return out, nil
}

func kvGetOne[T any](s *KVStore, prefix, op, idOrPrefix string) (*T, error) {
	var out *T
	err := s.db.View(func(txn *badger.Txn) error {
		v, _, err := kvFetch[T](txn, prefix, op, idOrPrefix)
		out = v
		return err
	})
	return out, wrapKV(op, err)
}

func kvListAll[T any](s *KVStore, prefix, op string) ([]*T, error) {
	var out []*T
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = kvList[T](txn, prefix)
		return err
	})
	return out, wrapKV(op, err)
}

// Check-ins

func (s *KVStore) CreateCheckIn(_ context.Context, c *models.CheckIn) error {
	const op = "create check-in"
	if err := prepareCheckIn(op, c); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(CheckInPrefix, c.ID), c)
}

func (s *KVStore) GetCheckIn(_ context.Context, idOrPrefix string) (*models.CheckIn, error) {
	return kvGetOne[models.CheckIn](s, CheckInPrefix, "get check-in", idOrPrefix)
}

func (s *KVStore) ListCheckIns(_ context.Context, q Query) ([]*models.CheckIn, error) {
	all, err := kvListAll[models.CheckIn](s, CheckInPrefix, "list check-ins")
	if err != nil {
		return nil, err
	}
	return applyQuery(all, q,
		func(c *models.CheckIn) time.Time { return c.Date },
		func(c *models.CheckIn) uuid.UUID { return c.ID }), nil
}

func (s *KVStore) UpdateCheckIn(_ context.Context, idOrPrefix string, p models.CheckInPatch) (*models.CheckIn, error) {
	const op = "update check-in"
	return kvUpdate(s, CheckInPrefix, op, idOrPrefix, func(_ *badger.Txn, c *models.CheckIn) error {
		return patchCheckIn(op, c, p)
	})
}

func (s *KVStore) DeleteCheckIn(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(CheckInPrefix, "delete check-in", idOrPrefix)
}

// Meals

func (s *KVStore) CreateMeal(_ context.Context, m *models.Meal) error {
	const op = "create meal"
	if err := prepareMeal(op, m); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(MealPrefix, m.ID), m)
}

func (s *KVStore) GetMeal(_ context.Context, idOrPrefix string) (*models.Meal, error) {
	return kvGetOne[models.Meal](s, MealPrefix, "get meal", idOrPrefix)
}

func (s *KVStore) ListMeals(_ context.Context, q Query) ([]*models.Meal, error) {
	all, err := kvListAll[models.Meal](s, MealPrefix, "list meals")
	if err != nil {
		return nil, err
	}
	return applyQuery(all, q,
		func(m *models.Meal) time.Time { return m.Datetime },
		func(m *models.Meal) uuid.UUID { return m.ID }), nil
}

func (s *KVStore) UpdateMeal(_ context.Context, idOrPrefix string, p models.MealPatch) (*models.Meal, error) {
	const op = "update meal"
	return kvUpdate(s, MealPrefix, op, idOrPrefix, func(_ *badger.Txn, m *models.Meal) error {
		return patchMeal(op, m, p)
	})
}

func (s *KVStore) DeleteMeal(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(MealPrefix, "delete meal", idOrPrefix)
}

// Gym sessions

func (s *KVStore) CreateGymSession(_ context.Context, gs *models.GymSession) error {
	const op = "create gym session"
	if err := prepareGymSession(op, gs); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(GymSessionPrefix, gs.ID), gs)
}

func (s *KVStore) GetGymSession(_ context.Context, idOrPrefix string) (*models.GymSession, error) {
	return kvGetOne[models.GymSession](s, GymSessionPrefix, "get gym session", idOrPrefix)
}

func (s *KVStore) GetGymSessionWithExercises(ctx context.Context, idOrPrefix string) (*models.GymSession, error) {
	gs, err := s.GetGymSession(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	exercises, err := s.ListExercisesBySession(ctx, gs.ID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	for _, e := range exercises {
		gs.Exercises = append(gs.Exercises, *e)
	}
	return gs, nil
}

func (s *KVStore) ListGymSessions(_ context.Context, q Query) ([]*models.GymSession, error) {
	all, err := kvListAll[models.GymSession](s, GymSessionPrefix, "list gym sessions")
	if err != nil {
		return nil, err
	}
	return applyQuery(all, q,
		func(gs *models.GymSession) time.Time { return gs.Datetime },
		func(gs *models.GymSession) uuid.UUID { return gs.ID }), nil
}

func (s *KVStore) UpdateGymSession(_ context.Context, idOrPrefix string, p models.GymSessionPatch) (*models.GymSession, error) {
	const op = "update gym session"
	return kvUpdate(s, GymSessionPrefix, op, idOrPrefix, func(_ *badger.Txn, gs *models.GymSession) error {
		return patchGymSession(op, gs, p)
	})
}

// DeleteGymSession removes a session and its exercises in one transaction.
// Badger has no foreign keys, so the cascade is explicit.
func (s *KVStore) DeleteGymSession(_ context.Context, idOrPrefix string) error {
	const op = "delete gym session"
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		key, err := kvResolve(txn, GymSessionPrefix, op, idOrPrefix)
		if err != nil {
			return err
		}
		sessionID := strings.TrimPrefix(string(key), GymSessionPrefix)

		exercises, err := kvList[models.Exercise](txn, ExercisePrefix)
		if err != nil {
			return apperr.Integrity(op, fmt.Errorf("list exercises: %w", err))
		}
		for _, e := range exercises {
			if e.SessionID.String() != sessionID {
				continue
			}
			if err := txn.Delete(recordKey(ExercisePrefix, e.ID)); err != nil {
				return apperr.Integrity(op, fmt.Errorf("delete exercise %s: %w", e.ID, err))
			}
			removed++
		}

		if s.beforeSessionDelete != nil {
			if err := s.beforeSessionDelete(); err != nil {
				return apperr.Integrity(op, err)
			}
		}

		if err := txn.Delete(key); err != nil {
			return apperr.Integrity(op, fmt.Errorf("delete session: %w", err))
		}
		return nil
	})
	if err != nil {
		return wrapKV(op, err)
	}
	log.Debugf("storage: deleted gym session %s with %d exercises", idOrPrefix, removed)
	return nil
}

// Exercises

func kvRequireSession(op string, sessionID uuid.UUID) func(*badger.Txn) error {
	return func(txn *badger.Txn) error {
		found, err := kvExists(txn, recordKey(GymSessionPrefix, sessionID))
		if err != nil {
			return apperr.Storage(op, err)
		}
		if !found {
			return apperr.NotFound(op, "session "+sessionID.String())
		}
		return nil
	}
}

func (s *KVStore) CreateExercise(_ context.Context, e *models.Exercise) error {
	const op = "create exercise"
	if err := prepareExercise(op, e); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(ExercisePrefix, e.ID), e, kvRequireSession(op, e.SessionID))
}

func (s *KVStore) GetExercise(_ context.Context, idOrPrefix string) (*models.Exercise, error) {
	return kvGetOne[models.Exercise](s, ExercisePrefix, "get exercise", idOrPrefix)
}

func (s *KVStore) ListExercisesBySession(_ context.Context, sessionID uuid.UUID) ([]*models.Exercise, error) {
	all, err := kvListAll[models.Exercise](s, ExercisePrefix, "list session exercises")
	if err != nil {
		return nil, err
	}
	var out []*models.Exercise
	for _, e := range all {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	sortExercisesByName(out)
	return out, nil
}

func (s *KVStore) ListExercisesByName(_ context.Context, name string) ([]*models.Exercise, error) {
	const op = "list exercise history"
	var out []*models.Exercise
	when := make(map[uuid.UUID]time.Time)
	err := s.db.View(func(txn *badger.Txn) error {
		all, err := kvList[models.Exercise](txn, ExercisePrefix)
		if err != nil {
			return err
		}
		for _, e := range all {
			if e.ExerciseName != name {
				continue
			}
			if _, ok := when[e.SessionID]; !ok {
				gs, err := kvGet[models.GymSession](txn, recordKey(GymSessionPrefix, e.SessionID))
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				when[e.SessionID] = gs.Datetime
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, wrapKV(op, err)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := when[out[i].SessionID], when[out[j].SessionID]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *KVStore) UpdateExercise(_ context.Context, idOrPrefix string, p models.ExercisePatch) (*models.Exercise, error) {
	const op = "update exercise"
	return kvUpdate(s, ExercisePrefix, op, idOrPrefix, func(_ *badger.Txn, e *models.Exercise) error {
		return patchExercise(op, e, p)
	})
}

func (s *KVStore) DeleteExercise(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(ExercisePrefix, "delete exercise", idOrPrefix)
}

func sortExercisesByName(es []*models.Exercise) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].ExerciseName != es[j].ExerciseName {
			return es[i].ExerciseName < es[j].ExerciseName
		}
		return es[i].ID.String() < es[j].ID.String()
	})
}

// Habits

// kvRequireFreeHabitDate fails when another habit already owns h's date.
func kvRequireFreeHabitDate(op string, h *models.Habit) func(*badger.Txn) error {
	return func(txn *badger.Txn) error {
		all, err := kvList[models.Habit](txn, HabitPrefix)
		if err != nil {
			return apperr.Storage(op, err)
		}
		for _, other := range all {
			if other.ID != h.ID && other.Date.Equal(h.Date) {
				return apperr.Validation(op, fmt.Errorf("habits for %s are already logged (%s)",
					h.Date.Format(models.DayLayout), other.ID.String()[:8]))
			}
		}
		return nil
	}
}

func (s *KVStore) CreateHabit(_ context.Context, h *models.Habit) error {
	const op = "create habit"
	if err := prepareHabit(op, h); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(HabitPrefix, h.ID), h, kvRequireFreeHabitDate(op, h))
}

func (s *KVStore) GetHabit(_ context.Context, idOrPrefix string) (*models.Habit, error) {
	return kvGetOne[models.Habit](s, HabitPrefix, "get habit", idOrPrefix)
}

func (s *KVStore) GetHabitByDate(_ context.Context, day time.Time) (*models.Habit, error) {
	const op = "get habit by date"
	key := models.Day(day)
	all, err := kvListAll[models.Habit](s, HabitPrefix, op)
	if err != nil {
		return nil, err
	}
	for _, h := range all {
		if h.Date.Equal(key) {
			return h, nil
		}
	}
	return nil, apperr.NotFound(op, key.Format(models.DayLayout))
}

func (s *KVStore) ListHabits(_ context.Context, q Query) ([]*models.Habit, error) {
	all, err := kvListAll[models.Habit](s, HabitPrefix, "list habits")
	if err != nil {
		return nil, err
	}
	return applyQuery(all, q,
		func(h *models.Habit) time.Time { return h.Date },
		func(h *models.Habit) uuid.UUID { return h.ID }), nil
}

func (s *KVStore) UpdateHabit(_ context.Context, idOrPrefix string, p models.HabitPatch) (*models.Habit, error) {
	const op = "update habit"
	return kvUpdate(s, HabitPrefix, op, idOrPrefix, func(txn *badger.Txn, h *models.Habit) error {
		if err := patchHabit(op, h, p); err != nil {
			return err
		}
		return kvRequireFreeHabitDate(op, h)(txn)
	})
}

func (s *KVStore) DeleteHabit(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(HabitPrefix, "delete habit", idOrPrefix)
}

// Goals

func (s *KVStore) CreateGoal(_ context.Context, g *models.Goal) error {
	const op = "create goal"
	if err := prepareGoal(op, g); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(GoalPrefix, g.ID), g)
}

func (s *KVStore) GetGoal(_ context.Context, idOrPrefix string) (*models.Goal, error) {
	return kvGetOne[models.Goal](s, GoalPrefix, "get goal", idOrPrefix)
}

func (s *KVStore) ListGoals(_ context.Context, status *models.GoalStatus) ([]*models.Goal, error) {
	all, err := kvListAll[models.Goal](s, GoalPrefix, "list goals")
	if err != nil {
		return nil, err
	}
	var out []*models.Goal
	for _, g := range all {
		if status == nil || g.Status == *status {
			out = append(out, g)
		}
	}
	return applyQuery(out, Query{},
		func(g *models.Goal) time.Time { return g.CreatedAt },
		func(g *models.Goal) uuid.UUID { return g.ID }), nil
}

func (s *KVStore) UpdateGoal(_ context.Context, idOrPrefix string, p models.GoalPatch) (*models.Goal, error) {
	const op = "update goal"
	return kvUpdate(s, GoalPrefix, op, idOrPrefix, func(_ *badger.Txn, g *models.Goal) error {
		return patchGoal(op, g, p)
	})
}

func (s *KVStore) DeleteGoal(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(GoalPrefix, "delete goal", idOrPrefix)
}

// PRs

func (s *KVStore) CreatePR(_ context.Context, p *models.PR) error {
	const op = "create PR"
	if err := preparePR(op, p); err != nil {
		return err
	}
	return s.kvCreate(op, recordKey(PRPrefix, p.ID), p)
}

func (s *KVStore) GetPR(_ context.Context, idOrPrefix string) (*models.PR, error) {
	return kvGetOne[models.PR](s, PRPrefix, "get PR", idOrPrefix)
}

func (s *KVStore) ListPRs(_ context.Context, exerciseName, prType string) ([]*models.PR, error) {
	all, err := kvListAll[models.PR](s, PRPrefix, "list PRs")
	if err != nil {
		return nil, err
	}
	var out []*models.PR
	for _, p := range all {
		if exerciseName != "" && p.ExerciseName != exerciseName {
			continue
		}
		if prType != "" && p.PRType != prType {
			continue
		}
		out = append(out, p)
	}
	return applyQuery(out, Query{},
		func(p *models.PR) time.Time { return p.Date },
		func(p *models.PR) uuid.UUID { return p.ID }), nil
}

func (s *KVStore) DeletePR(_ context.Context, idOrPrefix string) error {
	return s.kvDelete(PRPrefix, "delete PR", idOrPrefix)
}

func (s *KVStore) MarkPRsSeen(_ context.Context) (int, error) {
	const op = "mark PRs seen"
	n := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		all, err := kvList[models.PR](txn, PRPrefix)
		if err != nil {
			return err
		}
		for _, p := range all {
			if !p.IsNew {
				continue
			}
			p.IsNew = false
			if err := kvPut(txn, recordKey(PRPrefix, p.ID), p); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, wrapKV(op, err)
	}
	return n, nil
}

// Settings

func (s *KVStore) GetSetting(_ context.Context, key string) (string, error) {
	const op = "get setting"
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		st, err := kvGet[models.Setting](txn, []byte(SettingPrefix+key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperr.NotFound(op, key)
		}
		if err != nil {
			return err
		}
		value = st.Value
		return nil
	})
	return value, wrapKV(op, err)
}

func (s *KVStore) SetSetting(_ context.Context, key, value string) error {
	const op = "set setting"
	key, err := prepareSetting(op, key)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return kvPut(txn, []byte(SettingPrefix+key), models.Setting{Key: key, Value: value})
	})
	return wrapKV(op, err)
}

func (s *KVStore) ListSettings(_ context.Context) ([]models.Setting, error) {
	all, err := kvListAll[models.Setting](s, SettingPrefix, "list settings")
	if err != nil {
		return nil, err
	}
	var out []models.Setting
	for _, st := range all {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *KVStore) DeleteSetting(_ context.Context, key string) error {
	const op = "delete setting"
	err := s.db.Update(func(txn *badger.Txn) error {
		k := []byte(SettingPrefix + key)
		found, err := kvExists(txn, k)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(op, key)
		}
		return txn.Delete(k)
	})
	return wrapKV(op, err)
}
