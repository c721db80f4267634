// ABOUTME: Goal CRUD operations for SQLite storage.
// ABOUTME: created_at is written once on insert and never touched by updates.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/models"
)

const goalColumns = `id, type, target_value, current_value, deadline, status, created_at`

// CreateGoal validates and stores a new goal. Status defaults to active.
func (d *DB) CreateGoal(ctx context.Context, g *models.Goal) error {
	const op = "create goal"
	if err := prepareGoal(op, g); err != nil {
		return err
	}
	if err := saveGoal(ctx, d.db, g, false); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: created goal %s", g.ID)
	return nil
}

// GetGoal retrieves a goal by ID or ID prefix.
func (d *DB) GetGoal(ctx context.Context, idOrPrefix string) (*models.Goal, error) {
	return getGoal(ctx, d.db, "get goal", idOrPrefix)
}

// ListGoals retrieves goals, optionally filtered by status, newest first.
func (d *DB) ListGoals(ctx context.Context, status *models.GoalStatus) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return queryList(ctx, d.db, "list goals", query, args, scanGoal)
}

// UpdateGoal applies a partial update and returns the stored result.
func (d *DB) UpdateGoal(ctx context.Context, idOrPrefix string, p models.GoalPatch) (*models.Goal, error) {
	const op = "update goal"
	var out *models.Goal
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		g, err := getGoal(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchGoal(op, g, p); err != nil {
			return err
		}
		if err := saveGoal(ctx, tx, g, true); err != nil {
			return storageErr(op, err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated goal %s", out.ID)
	return out, nil
}

// DeleteGoal removes a goal by ID or prefix.
func (d *DB) DeleteGoal(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "goals", "delete goal", idOrPrefix)
}

func getGoal(ctx context.Context, q querier, op, idOrPrefix string) (*models.Goal, error) {
	id, err := resolveID(ctx, q, "goals", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanGoal)
}

func saveGoal(ctx context.Context, q querier, g *models.Goal, upsert bool) error {
	query := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, target_value = excluded.target_value,
			current_value = excluded.current_value, deadline = excluded.deadline,
			status = excluded.status, created_at = excluded.created_at`
	}
	_, err := q.ExecContext(ctx, query,
		g.ID.String(),
		g.Type,
		g.TargetValue,
		g.CurrentValue,
		formatOptionalTime(g.Deadline),
		string(g.Status),
		formatTime(g.CreatedAt),
	)
	return err
}

func scanGoal(s scanner) (*models.Goal, error) {
	var g models.Goal
	var idStr, status, createdAt string
	var deadline sql.NullString

	if err := s.Scan(&idStr, &g.Type, &g.TargetValue, &g.CurrentValue, &deadline, &status, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if g.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse goal id: %w", err)
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if deadline.Valid {
		t, err := parseTime(deadline.String)
		if err != nil {
			return nil, err
		}
		g.Deadline = &t
	}
	g.Status = models.GoalStatus(status)
	return &g, nil
}
