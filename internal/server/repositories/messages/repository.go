package messages

import (
	"context"

	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Create stores a new turn in the processing state.
	Create(ctx context.Context, owner models.UserID, requestID uuid.UUID, userMessage string) error
	// Finish attaches the reply and the final status to the turn.
	Finish(ctx context.Context, owner models.UserID, requestID uuid.UUID, response string, status models.MessageStatus) error
	// RecentCompleted returns the newest limit completed turns, oldest first.
	RecentCompleted(ctx context.Context, owner models.UserID, limit int) ([]models.Turn, error)
}
