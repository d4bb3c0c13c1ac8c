package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const defaultTaskTitle = "Task"

// TaskInput carries client-supplied task fields; nil means not supplied.
type TaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *string
	Completed   *bool
}

type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

func (s *TaskService) List(ctx context.Context, owner models.UserID) ([]*models.Task, error) {
	tasks, err := s.repomanager.Tasks(s.db).ListByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, owner models.UserID, in TaskInput) (*models.Task, error) {
	task := &models.Task{
		Title:    defaultTaskTitle,
		Priority: models.PriorityMedium,
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	if in.DueDate != nil && *in.DueDate != "" {
		if err := validateDate("due_date", *in.DueDate); err != nil {
			return nil, err
		}
		due := *in.DueDate
		task.DueDate = &due
	}

	created, err := s.repomanager.Tasks(s.db).Create(ctx, owner, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return created, nil
}

// Update changes the supplied fields. With nothing supplied the task is
// marked completed.
func (s *TaskService) Update(ctx context.Context, owner models.UserID, id uuid.UUID, in TaskInput) error {
	var patch models.TaskPatch

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return common.Detail(common.ErrorValidation, "title must not be empty")
		}
		patch.Title = &title
	}
	patch.Description = in.Description
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if in.DueDate != nil {
		if *in.DueDate != "" {
			if err := validateDate("due_date", *in.DueDate); err != nil {
				return err
			}
		}
		patch.DueDate = in.DueDate
	}
	patch.Completed = in.Completed

	if patch.Empty() {
		done := true
		patch.Completed = &done
	}

	if _, err := s.repomanager.Tasks(s.db).Update(ctx, owner, id, patch); err != nil {
		return fmt.Errorf("error updating task: %w", err)
	}
	return nil
}

// Delete is a no-op when the task does not exist.
func (s *TaskService) Delete(ctx context.Context, owner models.UserID, id uuid.UUID) error {
	if _, err := s.repomanager.Tasks(s.db).Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}

func parsePriority(s string) (models.Priority, error) {
	p, ok := models.ParsePriority(s)
	if !ok {
		return "", common.Detailf(common.ErrorValidation, "priority must be one of high, medium, low; got %q", s)
	}
	return p, nil
}

func validateDate(field, s string) error {
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return common.Detailf(common.ErrorValidation, "%s must be YYYY-MM-DD; got %q", field, s)
	}
	return nil
}

func validateClock(field, s string) error {
	if _, err := time.Parse(models.TimeLayout, s); err != nil {
		return common.Detailf(common.ErrorValidation, "%s must be HH:MM; got %q", field, s)
	}
	return nil
}
