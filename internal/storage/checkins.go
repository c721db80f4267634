// ABOUTME: CheckIn CRUD operations for SQLite storage.
// ABOUTME: BMI and category are recomputed whenever height or weight is written.
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

const checkInColumns = `id, date, height_cm, weight_kg, waist_cm, notes, bmi, bmi_category`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// CreateCheckIn validates and stores a new check-in.
func (d *DB) CreateCheckIn(ctx context.Context, c *models.CheckIn) error {
	const op = "create check-in"
	if err := prepareCheckIn(op, c); err != nil {
		return err
	}
	if err := saveCheckIn(ctx, d.db, c, false); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: created check-in %s", c.ID)
	return nil
}

// GetCheckIn retrieves a check-in by ID or ID prefix.
func (d *DB) GetCheckIn(ctx context.Context, idOrPrefix string) (*models.CheckIn, error) {
	return getCheckIn(ctx, d.db, "get check-in", idOrPrefix)
}

// ListCheckIns retrieves check-ins within the query's date range.
func (d *DB) ListCheckIns(ctx context.Context, q Query) ([]*models.CheckIn, error) {
	query, args := rangeClause(`SELECT `+checkInColumns+` FROM checkins`, "date", q, nil)
	return queryList(ctx, d.db, "list check-ins", query, args, scanCheckIn)
}

// UpdateCheckIn applies a partial update and returns the stored result.
func (d *DB) UpdateCheckIn(ctx context.Context, idOrPrefix string, p models.CheckInPatch) (*models.CheckIn, error) {
	const op = "update check-in"
	var out *models.CheckIn
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getCheckIn(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchCheckIn(op, c, p); err != nil {
			return err
		}
		if err := saveCheckIn(ctx, tx, c, true); err != nil {
			return storageErr(op, err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated check-in %s", out.ID)
	return out, nil
}

// DeleteCheckIn removes a check-in by ID or prefix.
func (d *DB) DeleteCheckIn(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "checkins", "delete check-in", idOrPrefix)
}

func getCheckIn(ctx context.Context, q querier, op, idOrPrefix string) (*models.CheckIn, error) {
	id, err := resolveID(ctx, q, "checkins", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+checkInColumns+` FROM checkins WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanCheckIn)
}

func saveCheckIn(ctx context.Context, q querier, c *models.CheckIn, upsert bool) error {
	query := `INSERT INTO checkins (` + checkInColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			date = excluded.date, height_cm = excluded.height_cm, weight_kg = excluded.weight_kg,
			waist_cm = excluded.waist_cm, notes = excluded.notes,
			bmi = excluded.bmi, bmi_category = excluded.bmi_category`
	}
	_, err := q.ExecContext(ctx, query,
		c.ID.String(),
		formatTime(c.Date),
		c.HeightCm,
		c.WeightKg,
		c.WaistCm,
		c.Notes,
		c.BMI,
		string(c.BMICategory),
	)
	return err
}

func scanCheckIn(s scanner) (*models.CheckIn, error) {
	var c models.CheckIn
	var idStr, date, category string
	var waist sql.NullFloat64
	var notes sql.NullString

	if err := s.Scan(&idStr, &date, &c.HeightCm, &c.WeightKg, &waist, &notes, &c.BMI, &category); err != nil {
		return nil, err
	}

	var err error
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse check-in id: %w", err)
	}
	if c.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	c.BMICategory = models.BMICategory(category)
	if waist.Valid {
		c.WaistCm = &waist.Float64
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	return &c, nil
}

// scanOne scans a single row, mapping no rows to a not-found error.
func scanOne[T any](op, idOrPrefix string, row *sql.Row, scan func(scanner) (*T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(op, idOrPrefix)
	}
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return v, nil
}

// queryList runs query and scans every row.
func queryList[T any](ctx context.Context, q querier, op, query string, args []any, scan func(scanner) (*T, error)) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}
