package tasks

import (
	"context"

	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
)

// Repository stores tasks. Every method is scoped to owner; rows of other
// users are invisible to it. Mutations report whether a row was touched.
type Repository interface {
	Create(ctx context.Context, owner models.UserID, task *models.Task) (*models.Task, error)
	ListByUser(ctx context.Context, owner models.UserID) ([]*models.Task, error)
	Update(ctx context.Context, owner models.UserID, id uuid.UUID, patch models.TaskPatch) (bool, error)
	SetCompleted(ctx context.Context, owner models.UserID, id uuid.UUID, completed bool) (bool, error)
	Delete(ctx context.Context, owner models.UserID, id uuid.UUID) (bool, error)
}
