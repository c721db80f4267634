// ABOUTME: GymSession and Exercise CRUD operations for SQLite storage.
// ABOUTME: Session delete removes its exercises and the session in one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
)

const (
	gymSessionColumns = `id, datetime, workout_type, duration_min, cardio_type, cardio_min, intensity, notes`
	exerciseColumns   = `id, session_id, exercise_name, sets, reps, weight_kg, rest_sec, volume, photo`
)

// CreateGymSession validates and stores a new session. Exercises attached
// to s are ignored; add them with CreateExercise.
func (d *DB) CreateGymSession(ctx context.Context, s *models.GymSession) error {
	const op = "create gym session"
	if err := prepareGymSession(op, s); err != nil {
		return err
	}
	if err := saveGymSession(ctx, d.db, s, false); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: created gym session %s", s.ID)
	return nil
}

// GetGymSession retrieves a session by ID or ID prefix (without exercises).
func (d *DB) GetGymSession(ctx context.Context, idOrPrefix string) (*models.GymSession, error) {
	return getGymSession(ctx, d.db, "get gym session", idOrPrefix)
}

// GetGymSessionWithExercises retrieves a session with all its exercises.
func (d *DB) GetGymSessionWithExercises(ctx context.Context, idOrPrefix string) (*models.GymSession, error) {
	s, err := d.GetGymSession(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	exercises, err := d.ListExercisesBySession(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	for _, e := range exercises {
		s.Exercises = append(s.Exercises, *e)
	}
	return s, nil
}

// ListGymSessions retrieves sessions within the query's datetime range.
func (d *DB) ListGymSessions(ctx context.Context, q Query) ([]*models.GymSession, error) {
	query, args := rangeClause(`SELECT `+gymSessionColumns+` FROM gym_sessions`, "datetime", q, nil)
	return queryList(ctx, d.db, "list gym sessions", query, args, scanGymSession)
}

// UpdateGymSession applies a partial update and returns the stored result.
func (d *DB) UpdateGymSession(ctx context.Context, idOrPrefix string, p models.GymSessionPatch) (*models.GymSession, error) {
	const op = "update gym session"
	var out *models.GymSession
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		s, err := getGymSession(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchGymSession(op, s, p); err != nil {
			return err
		}
		if err := saveGymSession(ctx, tx, s, true); err != nil {
			return storageErr(op, err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated gym session %s", out.ID)
	return out, nil
}

// DeleteGymSession removes a session and all its exercises atomically.
// On any failure nothing is removed.
func (d *DB) DeleteGymSession(ctx context.Context, idOrPrefix string) error {
	const op = "delete gym session"
	var removed int64
	var id string
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = resolveID(ctx, tx, "gym_sessions", op, idOrPrefix)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM exercises WHERE session_id = ?", id)
		if err != nil {
			return apperr.Integrity(op, fmt.Errorf("delete exercises: %w", err))
		}
		removed, _ = res.RowsAffected()

		if d.beforeSessionDelete != nil {
			if err := d.beforeSessionDelete(); err != nil {
				return apperr.Integrity(op, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM gym_sessions WHERE id = ?", id); err != nil {
			return apperr.Integrity(op, fmt.Errorf("delete session: %w", err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("storage: deleted gym session %s with %d exercises", id, removed)
	return nil
}

func getGymSession(ctx context.Context, q querier, op, idOrPrefix string) (*models.GymSession, error) {
	id, err := resolveID(ctx, q, "gym_sessions", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+gymSessionColumns+` FROM gym_sessions WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanGymSession)
}

func saveGymSession(ctx context.Context, q querier, s *models.GymSession, upsert bool) error {
	query := `INSERT INTO gym_sessions (` + gymSessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			datetime = excluded.datetime, workout_type = excluded.workout_type,
			duration_min = excluded.duration_min, cardio_type = excluded.cardio_type,
			cardio_min = excluded.cardio_min, intensity = excluded.intensity, notes = excluded.notes`
	}
	var cardioType *string
	if s.CardioType != nil {
		ct := string(*s.CardioType)
		cardioType = &ct
	}
	_, err := q.ExecContext(ctx, query,
		s.ID.String(),
		formatTime(s.Datetime),
		string(s.WorkoutType),
		s.DurationMin,
		cardioType,
		s.CardioMin,
		s.Intensity,
		s.Notes,
	)
	return err
}

func scanGymSession(sc scanner) (*models.GymSession, error) {
	var s models.GymSession
	var idStr, datetime, workoutType string
	var cardioType, notes sql.NullString
	var cardioMin sql.NullInt64

	if err := sc.Scan(&idStr, &datetime, &workoutType, &s.DurationMin, &cardioType, &cardioMin, &s.Intensity, &notes); err != nil {
		return nil, err
	}

	var err error
	if s.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse gym session id: %w", err)
	}
	if s.Datetime, err = parseTime(datetime); err != nil {
		return nil, err
	}
	s.WorkoutType = models.WorkoutType(workoutType)
	if cardioType.Valid {
		ct := models.CardioType(cardioType.String)
		s.CardioType = &ct
	}
	if cardioMin.Valid {
		m := int(cardioMin.Int64)
		s.CardioMin = &m
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	return &s, nil
}

// CreateExercise validates and stores an exercise under an existing session.
func (d *DB) CreateExercise(ctx context.Context, e *models.Exercise) error {
	const op = "create exercise"
	if err := prepareExercise(op, e); err != nil {
		return err
	}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireSession(ctx, tx, op, e.SessionID); err != nil {
			return err
		}
		return storageErr(op, saveExercise(ctx, tx, e, false))
	})
	if err != nil {
		return err
	}
	log.Debugf("storage: created exercise %s in session %s", e.ID, e.SessionID)
	return nil
}

// GetExercise retrieves an exercise by ID or ID prefix.
func (d *DB) GetExercise(ctx context.Context, idOrPrefix string) (*models.Exercise, error) {
	return getExercise(ctx, d.db, "get exercise", idOrPrefix)
}

// ListExercisesBySession retrieves every exercise of a session, by name.
func (d *DB) ListExercisesBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE session_id = ? ORDER BY exercise_name, id`
	return queryList(ctx, d.db, "list session exercises", query, []any{sessionID.String()}, scanExercise)
}

// ListExercisesByName retrieves every logged instance of an exercise,
// matched exactly, most recent session first.
func (d *DB) ListExercisesByName(ctx context.Context, name string) ([]*models.Exercise, error) {
	query := `
		SELECT e.id, e.session_id, e.exercise_name, e.sets, e.reps, e.weight_kg, e.rest_sec, e.volume, e.photo
		FROM exercises e
		JOIN gym_sessions s ON s.id = e.session_id
		WHERE e.exercise_name = ?
		ORDER BY s.datetime DESC, e.id
	`
	return queryList(ctx, d.db, "list exercise history", query, []any{name}, scanExercise)
}

// UpdateExercise applies a partial update. Volume is recomputed from the
// merged values when sets, reps or weight is part of the update.
func (d *DB) UpdateExercise(ctx context.Context, idOrPrefix string, p models.ExercisePatch) (*models.Exercise, error) {
	const op = "update exercise"
	var out *models.Exercise
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getExercise(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchExercise(op, e, p); err != nil {
			return err
		}
		if err := saveExercise(ctx, tx, e, true); err != nil {
			return storageErr(op, err)
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated exercise %s", out.ID)
	return out, nil
}

// DeleteExercise removes an exercise by ID or prefix.
func (d *DB) DeleteExercise(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "exercises", "delete exercise", idOrPrefix)
}

func requireSession(ctx context.Context, q querier, op string, sessionID uuid.UUID) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM gym_sessions WHERE id = ?", sessionID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(op, "session "+sessionID.String())
	}
	if err != nil {
		return apperr.Storage(op, err)
	}
	return nil
}

func getExercise(ctx context.Context, q querier, op, idOrPrefix string) (*models.Exercise, error) {
	id, err := resolveID(ctx, q, "exercises", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanExercise)
}

func saveExercise(ctx context.Context, q querier, e *models.Exercise, upsert bool) error {
	query := `INSERT INTO exercises (` + exerciseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id, exercise_name = excluded.exercise_name,
			sets = excluded.sets, reps = excluded.reps, weight_kg = excluded.weight_kg,
			rest_sec = excluded.rest_sec, volume = excluded.volume, photo = excluded.photo`
	}
	_, err := q.ExecContext(ctx, query,
		e.ID.String(),
		e.SessionID.String(),
		e.ExerciseName,
		e.Sets,
		e.Reps,
		e.WeightKg,
		e.RestSec,
		e.Volume,
		e.Photo,
	)
	return err
}

func scanExercise(s scanner) (*models.Exercise, error) {
	var e models.Exercise
	var idStr, sessionStr string
	var rest sql.NullInt64
	var photo []byte

	if err := s.Scan(&idStr, &sessionStr, &e.ExerciseName, &e.Sets, &e.Reps, &e.WeightKg, &rest, &e.Volume, &photo); err != nil {
		return nil, err
	}

	var err error
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse exercise id: %w", err)
	}
	if e.SessionID, err = uuid.Parse(sessionStr); err != nil {
		return nil, fmt.Errorf("parse exercise session id: %w", err)
	}
	if rest.Valid {
		r := int(rest.Int64)
		e.RestSec = &r
	}
	if len(photo) > 0 {
		e.Photo = photo
	}
	return &e, nil
}
