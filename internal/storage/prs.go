// ABOUTME: PR and Setting operations for SQLite storage.
// ABOUTME: PRs are append-only history; settings are a plain key/value table.
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

const prColumns = `id, exercise_name, pr_type, value, date, notes, is_new`

// CreatePR stores a new personal record flagged as new.
func (d *DB) CreatePR(ctx context.Context, p *models.PR) error {
	const op = "create PR"
	if err := preparePR(op, p); err != nil {
		return err
	}
	if err := savePR(ctx, d.db, p, false); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: created PR %s (%s %s %.2f)", p.ID, p.ExerciseName, p.PRType, p.Value)
	return nil
}

// GetPR retrieves a PR by ID or ID prefix.
func (d *DB) GetPR(ctx context.Context, idOrPrefix string) (*models.PR, error) {
	const op = "get PR"
	id, err := resolveID(ctx, d.db, "prs", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := d.db.QueryRowContext(ctx, `SELECT `+prColumns+` FROM prs WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanPR)
}

// ListPRs retrieves PRs, newest first. The exercise name matches exactly;
// empty filters match everything.
func (d *DB) ListPRs(ctx context.Context, exerciseName, prType string) ([]*models.PR, error) {
	query := `SELECT ` + prColumns + ` FROM prs WHERE 1 = 1`
	var args []any
	if exerciseName != "" {
		query += ` AND exercise_name = ?`
		args = append(args, exerciseName)
	}
	if prType != "" {
		query += ` AND pr_type = ?`
		args = append(args, prType)
	}
	query += ` ORDER BY date DESC, id DESC`
	return queryList(ctx, d.db, "list PRs", query, args, scanPR)
}

// DeletePR removes a PR by ID or prefix.
func (d *DB) DeletePR(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "prs", "delete PR", idOrPrefix)
}

// MarkPRsSeen clears the new flag on every PR and returns how many changed.
func (d *DB) MarkPRsSeen(ctx context.Context) (int, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE prs SET is_new = 0 WHERE is_new = 1`)
	if err != nil {
		return 0, storageErr("mark PRs seen", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("mark PRs seen", err)
	}
	return int(n), nil
}

func savePR(ctx context.Context, q querier, p *models.PR, upsert bool) error {
	query := `INSERT INTO prs (` + prColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			exercise_name = excluded.exercise_name, pr_type = excluded.pr_type,
			value = excluded.value, date = excluded.date, notes = excluded.notes,
			is_new = excluded.is_new`
	}
	_, err := q.ExecContext(ctx, query,
		p.ID.String(),
		p.ExerciseName,
		p.PRType,
		p.Value,
		formatTime(p.Date),
		p.Notes,
		p.IsNew,
	)
	return err
}

func scanPR(s scanner) (*models.PR, error) {
	var p models.PR
	var idStr, date string
	var notes sql.NullString

	if err := s.Scan(&idStr, &p.ExerciseName, &p.PRType, &p.Value, &date, &notes, &p.IsNew); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse PR id: %w", err)
	}
	if p.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	return &p, nil
}

// GetSetting returns the value stored under key.
func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	const op = "get setting"
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound(op, key)
	}
	if err != nil {
		return "", apperr.Storage(op, err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value.
func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	const op = "set setting"
	key, err := prepareSetting(op, key)
	if err != nil {
		return err
	}
	if err := saveSetting(ctx, d.db, models.Setting{Key: key, Value: value}); err != nil {
		return storageErr(op, err)
	}
	return nil
}

// ListSettings returns every setting ordered by key.
func (d *DB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, apperr.Storage("list settings", err)
	}
	defer rows.Close()

	var out []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, apperr.Storage("list settings", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list settings", err)
	}
	return out, nil
}

// DeleteSetting removes key.
func (d *DB) DeleteSetting(ctx context.Context, key string) error {
	const op = "delete setting"
	res, err := d.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(op, key)
	}
	return nil
}

func saveSetting(ctx context.Context, q querier, s models.Setting) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		s.Key, s.Value)
	return err
}
