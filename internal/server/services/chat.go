package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/assistant"
	"github.com/dmitrijs2005/donna/internal/server/llm"
	"github.com/dmitrijs2005/donna/internal/server/metrics"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// HistoryLimit caps the chat history returned to clients.
const HistoryLimit = 50

// Completer is the model call made for each chat turn.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, contextText string, history []llm.Message, message string) (string, error)
}

type ChatReply struct {
	RequestID uuid.UUID
	Response  string
	Applied   int
}

type ChatService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	builder      *assistant.ContextBuilder
	applicator   *assistant.Applicator
	model        Completer
	logger       logging.Logger
	historyTurns int
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager, model Completer, historyTurns int, l logging.Logger) *ChatService {
	return &ChatService{
		db:           db,
		repomanager:  m,
		builder:      assistant.NewContextBuilder(db, m, l),
		applicator:   assistant.NewApplicator(db, m, l),
		model:        model,
		logger:       l.With("module", "chat"),
		historyTurns: historyTurns,
	}
}

// Send runs one chat turn: record it, ask the model with the user's context
// and history, apply any directives in the reply and store the cleaned
// reply. When the model fails the turn is stored as an error with an
// apology and the model error is returned.
func (s *ChatService) Send(ctx context.Context, owner models.UserID, message string) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, common.Detail(common.ErrorValidation, "Empty message")
	}

	requestID := uuid.New()
	repo := s.repomanager.Messages(s.db)

	if err := repo.Create(ctx, owner, requestID, message); err != nil {
		return nil, fmt.Errorf("error storing message: %w", err)
	}

	snapshot := s.builder.Build(ctx, owner)
	history := s.builder.History(ctx, owner, s.historyTurns)

	start := time.Now()
	raw, err := s.model.Complete(ctx, assistant.SystemPrompt, snapshot.Text, history, message)

	// a turn always ends completed or error, even if the caller went away
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		metrics.ModelRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.fail(ctx, owner, requestID, err)
		return nil, err
	}
	metrics.ModelRequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	directives := assistant.Extract(raw)
	applied := s.applicator.ApplyAll(ctx, directives, owner)
	reply := assistant.Sanitize(raw)

	if err := repo.Finish(ctx, owner, requestID, reply, models.MessageCompleted); err != nil {
		s.fail(ctx, owner, requestID, err)
		return nil, fmt.Errorf("error storing reply: %w", err)
	}

	metrics.ChatTurnsTotal.WithLabelValues(string(models.MessageCompleted)).Inc()
	s.logger.Info(ctx, "chat turn completed",
		"request_id", requestID, "user_id", owner, "directives", len(directives), "applied", applied)

	return &ChatReply{RequestID: requestID, Response: reply, Applied: applied}, nil
}

func (s *ChatService) fail(ctx context.Context, owner models.UserID, requestID uuid.UUID, cause error) {
	metrics.ChatTurnsTotal.WithLabelValues(string(models.MessageError)).Inc()
	s.logger.Error(ctx, "chat turn failed", "request_id", requestID, "user_id", owner, "error", cause)

	apology := "Sorry, I encountered an error: " + cause.Error()
	err := s.repomanager.Messages(s.db).Finish(context.WithoutCancel(ctx), owner, requestID, apology, models.MessageError)
	if err != nil {
		s.logger.Error(ctx, "error marking chat turn failed", "request_id", requestID, "error", err)
	}
}

// History returns the most recent completed turns, oldest first.
func (s *ChatService) History(ctx context.Context, owner models.UserID) ([]models.Turn, error) {
	turns, err := s.repomanager.Messages(s.db).RecentCompleted(ctx, owner, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading chat history: %w", err)
	}
	return turns, nil
}
