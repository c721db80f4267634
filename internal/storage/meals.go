// ABOUTME: Meal CRUD operations for SQLite storage.
// ABOUTME: Meals carry no derived fields; photos are stored as BLOBs.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/models"
)

const mealColumns = `id, datetime, meal_type, calories, protein, carbs, fat, water_ml, notes, photo`

// CreateMeal validates and stores a new meal.
func (d *DB) CreateMeal(ctx context.Context, m *models.Meal) error {
	const op = "create meal"
	if err := prepareMeal(op, m); err != nil {
		return err
	}
	if err := saveMeal(ctx, d.db, m, false); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: created meal %s", m.ID)
	return nil
}

// GetMeal retrieves a meal by ID or ID prefix.
func (d *DB) GetMeal(ctx context.Context, idOrPrefix string) (*models.Meal, error) {
	return getMeal(ctx, d.db, "get meal", idOrPrefix)
}

// ListMeals retrieves meals within the query's datetime range.
func (d *DB) ListMeals(ctx context.Context, q Query) ([]*models.Meal, error) {
	query, args := rangeClause(`SELECT `+mealColumns+` FROM meals`, "datetime", q, nil)
	return queryList(ctx, d.db, "list meals", query, args, scanMeal)
}

// UpdateMeal applies a partial update and returns the stored result.
func (d *DB) UpdateMeal(ctx context.Context, idOrPrefix string, p models.MealPatch) (*models.Meal, error) {
	const op = "update meal"
	var out *models.Meal
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		m, err := getMeal(ctx, tx, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := patchMeal(op, m, p); err != nil {
			return err
		}
		if err := saveMeal(ctx, tx, m, true); err != nil {
			return storageErr(op, err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("storage: updated meal %s", out.ID)
	return out, nil
}

// DeleteMeal removes a meal by ID or prefix.
func (d *DB) DeleteMeal(ctx context.Context, idOrPrefix string) error {
	return deleteByID(ctx, d.db, "meals", "delete meal", idOrPrefix)
}

func getMeal(ctx context.Context, q querier, op, idOrPrefix string) (*models.Meal, error) {
	id, err := resolveID(ctx, q, "meals", op, idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	return scanOne(op, idOrPrefix, row, scanMeal)
}

func saveMeal(ctx context.Context, q querier, m *models.Meal, upsert bool) error {
	query := `INSERT INTO meals (` + mealColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			datetime = excluded.datetime, meal_type = excluded.meal_type,
			calories = excluded.calories, protein = excluded.protein,
			carbs = excluded.carbs, fat = excluded.fat, water_ml = excluded.water_ml,
			notes = excluded.notes, photo = excluded.photo`
	}
	_, err := q.ExecContext(ctx, query,
		m.ID.String(),
		formatTime(m.Datetime),
		string(m.MealType),
		m.Calories,
		m.Protein,
		m.Carbs,
		m.Fat,
		m.WaterMl,
		m.Notes,
		m.Photo,
	)
	return err
}

func scanMeal(s scanner) (*models.Meal, error) {
	var m models.Meal
	var idStr, datetime, mealType string
	var water sql.NullInt64
	var notes sql.NullString
	var photo []byte

	if err := s.Scan(&idStr, &datetime, &mealType, &m.Calories, &m.Protein, &m.Carbs, &m.Fat, &water, &notes, &photo); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse meal id: %w", err)
	}
	if m.Datetime, err = parseTime(datetime); err != nil {
		return nil, err
	}
	m.MealType = models.MealType(mealType)
	if water.Valid {
		w := int(water.Int64)
		m.WaterMl = &w
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	if len(photo) > 0 {
		m.Photo = photo
	}
	return &m, nil
}
