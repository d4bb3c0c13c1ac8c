// Package tasks provides the PostgreSQL-backed task repository.
package tasks

import (
	"context"
	"database/sql"
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

const taskColumns = `id, user_id, title, description, priority, to_char(due_date, 'YYYY-MM-DD'), completed, created_at`

func (r *PostgresRepository) Create(ctx context.Context, owner models.UserID, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (user_id, title, description, priority, due_date, completed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + taskColumns

	var dueDate any
	if task.DueDate != nil {
		dueDate = *task.DueDate
	}

	row := r.db.QueryRowContext(ctx, query,
		owner.String(), task.Title, task.Description, string(task.Priority), dueDate, task.Completed)

	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// ListByUser returns owner's tasks, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, owner models.UserID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// Update applies the non-nil fields of patch. An empty patch touches nothing.
func (r *PostgresRepository) Update(ctx context.Context, owner models.UserID, id uuid.UUID, patch models.TaskPatch) (bool, error) {
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
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.DueDate != nil {
		if *patch.DueDate == "" {
			set("due_date", nil)
		} else {
			set("due_date", *patch.DueDate)
		}
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}

	args = append(args, id.String(), owner.String())
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	return r.exec(ctx, query, args...)
}

func (r *PostgresRepository) SetCompleted(ctx context.Context, owner models.UserID, id uuid.UUID, completed bool) (bool, error) {
	query := `UPDATE tasks SET completed = $1 WHERE id = $2 AND user_id = $3`
	return r.exec(ctx, query, completed, id.String(), owner.String())
}

func (r *PostgresRepository) Delete(ctx context.Context, owner models.UserID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
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

func scanTask(s scanner) (*models.Task, error) {
	var (
		t        models.Task
		priority string
		dueDate  sql.NullString
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &priority, &dueDate, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Priority = models.Priority(priority)
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	return &t, nil
}
