// ABOUTME: Whole-store operations for the Badger backend: export, import, clear.
// ABOUTME: Import writes every collection in one badger transaction so a failure leaves no trace.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

// Export reads every collection into one document, in the same order DB uses.
func (s *KVStore) Export(ctx context.Context) (*ExportData, error) {
	const op = "export"
	all := Query{Order: Oldest}
	data := newExportData()

	var err error
	if data.CheckIns, err = s.ListCheckIns(ctx, all); err != nil {
		return nil, fmt.Errorf("%s check-ins: %w", op, err)
	}
	if data.Meals, err = s.ListMeals(ctx, all); err != nil {
		return nil, fmt.Errorf("%s meals: %w", op, err)
	}
	if data.GymSessions, err = s.ListGymSessions(ctx, all); err != nil {
		return nil, fmt.Errorf("%s gym sessions: %w", op, err)
	}
	if data.Exercises, err = kvListAll[models.Exercise](s, ExercisePrefix, op); err != nil {
		return nil, fmt.Errorf("%s exercises: %w", op, err)
	}
	sort.SliceStable(data.Exercises, func(i, j int) bool {
		a, b := data.Exercises[i], data.Exercises[j]
		if a.SessionID != b.SessionID {
			return a.SessionID.String() < b.SessionID.String()
		}
		if a.ExerciseName != b.ExerciseName {
			return a.ExerciseName < b.ExerciseName
		}
		return a.ID.String() < b.ID.String()
	})
	if data.Habits, err = s.ListHabits(ctx, all); err != nil {
		return nil, fmt.Errorf("%s habits: %w", op, err)
	}
	if data.Goals, err = s.ListGoals(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s goals: %w", op, err)
	}
	if data.PRs, err = s.ListPRs(ctx, "", ""); err != nil {
		return nil, fmt.Errorf("%s PRs: %w", op, err)
	}
	if data.Settings, err = s.ListSettings(ctx); err != nil {
		return nil, fmt.Errorf("%s settings: %w", op, err)
	}
	return data, nil
}

// Import upserts every collection present in data, preserving identifiers.
func (s *KVStore) Import(_ context.Context, data *ExportData) error {
	const op = "import"
	if err := normalizeImport(data); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, c := range data.CheckIns {
			if err := kvPut(txn, recordKey(CheckInPrefix, c.ID), c); err != nil {
				return apperr.Storage(op, fmt.Errorf("check-in %s: %w", c.ID, err))
			}
		}
		for _, m := range data.Meals {
			if err := kvPut(txn, recordKey(MealPrefix, m.ID), m); err != nil {
				return apperr.Storage(op, fmt.Errorf("meal %s: %w", m.ID, err))
			}
		}
		for _, gs := range data.GymSessions {
			if err := kvPut(txn, recordKey(GymSessionPrefix, gs.ID), gs); err != nil {
				return apperr.Storage(op, fmt.Errorf("gym session %s: %w", gs.ID, err))
			}
		}
		for _, e := range data.Exercises {
			found, err := kvExists(txn, recordKey(GymSessionPrefix, e.SessionID))
			if err != nil {
				return apperr.Storage(op, err)
			}
			if !found {
				return apperr.Integrity(op, fmt.Errorf("exercise %s references missing session %s", e.ID, e.SessionID))
			}
			if err := kvPut(txn, recordKey(ExercisePrefix, e.ID), e); err != nil {
				return apperr.Storage(op, fmt.Errorf("exercise %s: %w", e.ID, err))
			}
		}
		if err := kvImportHabits(txn, op, data.Habits); err != nil {
			return err
		}
		for _, g := range data.Goals {
			if err := kvPut(txn, recordKey(GoalPrefix, g.ID), g); err != nil {
				return apperr.Storage(op, fmt.Errorf("goal %s: %w", g.ID, err))
			}
		}
		for _, p := range data.PRs {
			if err := kvPut(txn, recordKey(PRPrefix, p.ID), p); err != nil {
				return apperr.Storage(op, fmt.Errorf("PR %s: %w", p.ID, err))
			}
		}
		for _, st := range data.Settings {
			if err := kvPut(txn, []byte(SettingPrefix+st.Key), st); err != nil {
				return apperr.Storage(op, fmt.Errorf("setting %q: %w", st.Key, err))
			}
		}
		if s.beforeImportCommit != nil {
			if err := s.beforeImportCommit(); err != nil {
				return apperr.Storage(op, err)
			}
		}
		return nil
	})
	if err != nil {
		return wrapKV(op, err)
	}
	log.Debugf("storage: imported %v", data.Counts())
	return nil
}

// kvImportHabits writes habits, rejecting a date already owned by a
// different stored habit the way the SQLite unique index does.
func kvImportHabits(txn *badger.Txn, op string, habits []*models.Habit) error {
	if len(habits) == 0 {
		return nil
	}
	existing, err := kvList[models.Habit](txn, HabitPrefix)
	if err != nil {
		return apperr.Storage(op, err)
	}
	owner := make(map[int64]uuid.UUID, len(existing))
	for _, h := range existing {
		owner[h.Date.Unix()] = h.ID
	}
	for _, h := range habits {
		// An upsert may move a habit off a date, freeing it.
		for day, id := range owner {
			if id == h.ID {
				delete(owner, day)
			}
		}
		if id, taken := owner[h.Date.Unix()]; taken {
			return apperr.Integrity(op, fmt.Errorf("habit %s conflicts with habit %s on %s",
				h.ID, id, h.Date.Format(models.DayLayout)))
		}
		owner[h.Date.Unix()] = h.ID
		if err := kvPut(txn, recordKey(HabitPrefix, h.ID), h); err != nil {
			return apperr.Storage(op, fmt.Errorf("habit %s: %w", h.ID, err))
		}
	}
	return nil
}

// ClearAll deletes every record except settings in one transaction.
func (s *KVStore) ClearAll(_ context.Context) error {
	const op = "clear all"
	prefixes := []string{ExercisePrefix, GymSessionPrefix, CheckInPrefix, MealPrefix, HabitPrefix, GoalPrefix, PRPrefix}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range prefixes {
			for _, key := range kvKeys(txn, prefix) {
				if err := txn.Delete(key); err != nil {
					return apperr.Storage(op, fmt.Errorf("clear %s: %w", key, err))
				}
			}
		}
		return nil
	})
	if err != nil {
		return wrapKV(op, err)
	}
	log.Debug("storage: cleared all collections")
	return nil
}
