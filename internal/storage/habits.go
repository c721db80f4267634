// ABOUTME: Habit CRUD operations for SQLite storage.
// ABOUTME: One habit per calendar day; the score is derived from the logged fields.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

const habitColumns = `id, date, water_ml, steps, creatine, stretching, sleep_hours, score`

// CreateHabit validates and stores the habit log for a day. A second log
// for the same day is rejected.
func (d *DB) CreateHabit(ctx context.Context, h *models.Habit) error {
	const op = "create habit"
	if err := prepareHabit(op, h); err != nil {
		return err
	}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireFreeHabitDate(ctx, tx, op, h); err != nil {
			return err
		}
		return storageErr(op, saveHabit(ctx, tx, h, false))
	})
	if err != nil {
		return err
	}
	log.Debugf("storage: created habit %s for %s", h.ID, h.Date.Format(models.DayLayout))
	return nil
}

// GetHabit retrieves a habit by ID or ID prefix.
func (d *DB) GetHabit(ctx context.Context, idOrPrefix string) (*models.Habit, error) {
	return getHabit(ctx, d.db, "get habit", idOrPrefix)
}

// GetHabitByDate retrieves the habit logged on the UTC day containing day.
func (d *DB) GetHabitByDate(ctx context.Context, day time.Time) (*models.Habit, error) {
	const op = "get habit by date"
	key := models.Day(day)
	row := d.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE date = ?`, formatTime(key))
	return scanOne(op, key.Format(models.DayLayout), row, scanHabit)
}

// ListHabits retrieves habits within the query's date range.
func (d *DB) ListHabits(ctx context.Context, q Query) ([]*models.Habit, error) {
	query, args := rangeClause(`SELECT `+habitColumns+` FROM habits`, "date", q, nil)
	return queryList(ctx, d.db, "list habits", query, args, scanHabit)
}

// UpdateHabit applies a partial update. The score is recomputed over the
// merged record when any tracked field is part of the update.
func (d *DB) UpdateHabit(ctx context.Context, idOrPrefix string, p models.HabitPatch) (*models.Habit, error) {
	const op = "update habit"
	var out *models.Habit
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		h, err := getHabit(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchHabit(op, h, p); err != nil {
			return err
		}
		if err := requireFreeHabitDate(ctx, tx, op, h); err != nil {
			return err
		}
		if err := saveHabit(ctx, tx, h, true); err != nil {
			return storageErr(op, err)
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated habit %s", out.ID)
	return out, nil
}

// DeleteHabit removes a habit by ID or prefix.
func (d *DB) DeleteHabit(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "habits", "delete habit", idOrPrefix)
}

// requireFreeHabitDate fails when another habit already owns h's date.
func requireFreeHabitDate(ctx context.Context, q querier, op string, h *models.Habit) error {
	var other string
	err := q.QueryRowContext(ctx, "SELECT id FROM habits WHERE date = ? AND id != ?",
		formatTime(h.Date), h.ID.String()).Scan(&other)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperr.Storage(op, err)
	}
	return apperr.Validation(op, fmt.Errorf("habits for %s are already logged (%s)",
		h.Date.Format(models.DayLayout), other[:8]))
}

func getHabit(ctx context.Context, q querier, op, idOrPrefix string) (*models.Habit, error) {
	id, err := resolveID(ctx, q, "habits", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanHabit)
}

func saveHabit(ctx context.Context, q querier, h *models.Habit, upsert bool) error {
	query := `INSERT INTO habits (` + habitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			date = excluded.date, water_ml = excluded.water_ml, steps = excluded.steps,
			creatine = excluded.creatine, stretching = excluded.stretching,
			sleep_hours = excluded.sleep_hours, score = excluded.score`
	}
	_, err := q.ExecContext(ctx, query,
		h.ID.String(),
		formatTime(h.Date),
		h.WaterMl,
		h.Steps,
		h.Creatine,
		h.Stretching,
		h.SleepHours,
		h.Score,
	)
	return err
}

func scanHabit(s scanner) (*models.Habit, error) {
	var h models.Habit
	var idStr, date string
	var water, steps sql.NullInt64
	var creatine, stretching sql.NullBool
	var sleep sql.NullFloat64

	if err := s.Scan(&idStr, &date, &water, &steps, &creatine, &stretching, &sleep, &h.Score); err != nil {
		return nil, err
	}

	var err error
	if h.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse habit id: %w", err)
	}
	if h.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if water.Valid {
		v := int(water.Int64)
		h.WaterMl = &v
	}
	if steps.Valid {
		v := int(steps.Int64)
		h.Steps = &v
	}
	if creatine.Valid {
		h.Creatine = &creatine.Bool
	}
	if stretching.Valid {
		h.Stretching = &stretching.Bool
	}
	if sleep.Valid {
		h.SleepHours = &sleep.Float64
	}
	return &h, nil
}
