// Package events provides the PostgreSQL-backed calendar event repository.
package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, user_id, title, description, to_char(date, 'YYYY-MM-DD'), time, start_time, end_time, created_at`

func (r *PostgresRepository) Create(ctx context.Context, owner models.UserID, e *models.CalendarEvent) (*models.CalendarEvent, error) {
	query :=
		`INSERT INTO calendar_events (user_id, title, description, date, time, start_time, end_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + eventColumns

	row := r.db.QueryRowContext(ctx, query,
		owner.String(), e.Title, e.Description, e.Date, e.Time, e.StartTime, e.EndTime)

	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, owner models.UserID) ([]*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events
		 WHERE user_id = $1
		 ORDER BY date ASC, time ASC`
	return r.list(ctx, query, owner.String())
}

func (r *PostgresRepository) ListBetween(ctx context.Context, owner models.UserID, from, to string) ([]*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date ASC, time ASC`
	return r.list(ctx, query, owner.String(), from, to)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.CalendarEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// Update applies only the fields present in patch.
func (r *PostgresRepository) Update(ctx context.Context, owner models.UserID, id uuid.UUID, patch models.EventPatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Time != nil {
		set("time", *patch.Time)
	}
	if patch.StartTime != nil {
		set("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		set("end_time", *patch.EndTime)
	}

	args = append(args, id.String(), owner.String())
	query := fmt.Sprintf(`UPDATE calendar_events SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	return r.exec(ctx, query, args...)
}

func (r *PostgresRepository) Delete(ctx context.Context, owner models.UserID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	return r.exec(ctx, query, id.String(), owner.String())
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Date, &e.Time, &e.StartTime, &e.EndTime, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
