// Package messages provides the PostgreSQL-backed chat message repository.
package messages

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/donna/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, owner models.UserID, requestID uuid.UUID, userMessage string) error {
	query :=
		`INSERT INTO messages (request_id, user_id, user_message, status)
		 VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		requestID.String(), owner.String(), userMessage, string(models.MessageProcessing))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Finish returns common.ErrorNotFound when no turn of owner has requestID.
func (r *PostgresRepository) Finish(ctx context.Context, owner models.UserID, requestID uuid.UUID, response string, status models.MessageStatus) error {
	query :=
		`UPDATE messages SET donna_response = $1, status = $2
		 WHERE request_id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, response, string(status), requestID.String(), owner.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) RecentCompleted(ctx context.Context, owner models.UserID, limit int) ([]models.Turn, error) {
	query :=
		`SELECT user_message, COALESCE(donna_response, '') FROM messages
		 WHERE user_id = $1 AND status = $2
		 ORDER BY created_at DESC
		 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, owner.String(), string(models.MessageCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	turns := make([]models.Turn, 0, limit)
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.UserMessage, &t.DonnaResponse); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	// fetched newest first
	slices.Reverse(turns)
	return turns, nil
}
