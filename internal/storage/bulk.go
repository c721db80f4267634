// ABOUTME: Whole-store operations for SQLite: export, transactional import, clear.
// ABOUTME: Import validates first, then upserts every collection in one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
)

// Export reads every collection, oldest first, into one document.
func (d *DB) Export(ctx context.Context) (*ExportData, error) {
	const op = "export"
	all := Query{Order: Oldest}
	data := newExportData()

	var err error
	if data.CheckIns, err = d.ListCheckIns(ctx, all); err != nil {
		return nil, fmt.Errorf("%s check-ins: %w", op, err)
	}
	if data.Meals, err = d.ListMeals(ctx, all); err != nil {
		return nil, fmt.Errorf("%s meals: %w", op, err)
	}
	if data.GymSessions, err = d.ListGymSessions(ctx, all); err != nil {
		return nil, fmt.Errorf("%s gym sessions: %w", op, err)
	}
	data.Exercises, err = queryList(ctx, d.db, op,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY session_id, exercise_name, id`, nil, scanExercise)
	if err != nil {
		return nil, fmt.Errorf("%s exercises: %w", op, err)
	}
	if data.Habits, err = d.ListHabits(ctx, all); err != nil {
		return nil, fmt.Errorf("%s habits: %w", op, err)
	}
	if data.Goals, err = d.ListGoals(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s goals: %w", op, err)
	}
	if data.PRs, err = d.ListPRs(ctx, "", ""); err != nil {
		return nil, fmt.Errorf("%s PRs: %w", op, err)
	}
	if data.Settings, err = d.ListSettings(ctx); err != nil {
		return nil, fmt.Errorf("%s settings: %w", op, err)
	}
	return data, nil
}

// Import upserts every collection present in data, preserving identifiers.
// It is all-or-nothing: a malformed record fails before any write, and a
// write failure rolls back the whole import.
func (d *DB) Import(ctx context.Context, data *ExportData) error {
	const op = "import"
	if err := normalizeImport(data); err != nil {
		return err
	}

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range data.CheckIns {
			if err := saveCheckIn(ctx, tx, c, true); err != nil {
				return storageErr(op, fmt.Errorf("check-in %s: %w", c.ID, err))
			}
		}
		for _, m := range data.Meals {
			if err := saveMeal(ctx, tx, m, true); err != nil {
				return storageErr(op, fmt.Errorf("meal %s: %w", m.ID, err))
			}
		}
		for _, s := range data.GymSessions {
			if err := saveGymSession(ctx, tx, s, true); err != nil {
				return storageErr(op, fmt.Errorf("gym session %s: %w", s.ID, err))
			}
		}
		for _, e := range data.Exercises {
			if err := requireSession(ctx, tx, op, e.SessionID); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.Integrity(op, fmt.Errorf("exercise %s references missing session %s", e.ID, e.SessionID))
				}
				return err
			}
			if err := saveExercise(ctx, tx, e, true); err != nil {
				return storageErr(op, fmt.Errorf("exercise %s: %w", e.ID, err))
			}
		}
		for _, h := range data.Habits {
			if err := saveHabit(ctx, tx, h, true); err != nil {
				return storageErr(op, fmt.Errorf("habit %s: %w", h.ID, err))
			}
		}
		for _, g := range data.Goals {
			if err := saveGoal(ctx, tx, g, true); err != nil {
				return storageErr(op, fmt.Errorf("goal %s: %w", g.ID, err))
			}
		}
		for _, p := range data.PRs {
			if err := savePR(ctx, tx, p, true); err != nil {
				return storageErr(op, fmt.Errorf("PR %s: %w", p.ID, err))
			}
		}
		for _, s := range data.Settings {
			if err := saveSetting(ctx, tx, s); err != nil {
				return storageErr(op, fmt.Errorf("setting %q: %w", s.Key, err))
			}
		}
		if d.beforeImportCommit != nil {
			if err := d.beforeImportCommit(); err != nil {
				return apperr.Storage(op, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("storage: imported %v", data.Counts())
	return nil
}

// ClearAll deletes every record except settings in one transaction.
func (d *DB) ClearAll(ctx context.Context) error {
	const op = "clear all"
	tables := []string{"exercises", "gym_sessions", "checkins", "meals", "habits", "goals", "prs"}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return apperr.Storage(op, fmt.Errorf("clear %s: %w", table, err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("storage: cleared all collections")
	return nil
}
