package events

import (
	"context"

	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
)

// Repository stores calendar events, scoped to their owner.
type Repository interface {
	Create(ctx context.Context, owner models.UserID, event *models.CalendarEvent) (*models.CalendarEvent, error)
	ListByUser(ctx context.Context, owner models.UserID) ([]*models.CalendarEvent, error)
	// ListBetween returns events dated from..to inclusive (YYYY-MM-DD), by date.
	ListBetween(ctx context.Context, owner models.UserID, from, to string) ([]*models.CalendarEvent, error)
	Update(ctx context.Context, owner models.UserID, id uuid.UUID, patch models.EventPatch) (bool, error)
	Delete(ctx context.Context, owner models.UserID, id uuid.UUID) (bool, error)
}
