package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/metrics"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	untitledTask  = "Untitled Task"
	untitledEvent = "Untitled Event"
)

// Applicator executes directives against the datastore on behalf of one
// user. Directives are independent: a failed one never stops the rest.
type Applicator struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewApplicator(db dbx.DBTX, rm repomanager.RepositoryManager, l logging.Logger) *Applicator {
	return &Applicator{
		db:          db,
		repomanager: rm,
		logger:      l.With("module", "applicator"),
		now:         time.Now,
	}
}

// ApplyAll applies directives in order and returns how many succeeded.
func (a *Applicator) ApplyAll(ctx context.Context, directives []Directive, owner models.UserID) int {
	applied := 0
	for _, d := range directives {
		if err := a.Apply(ctx, d, owner); err != nil {
			a.logger.Error(ctx, "error applying directive", "action", d.Action, "user_id", owner, "error", err)
			continue
		}
		applied++
	}
	return applied
}

// Apply executes a single directive. Missing rows, unparseable ids and
// unknown actions are no-ops, not errors.
func (a *Applicator) Apply(ctx context.Context, d Directive, owner models.UserID) error {
	outcome, err := a.apply(ctx, d, owner)
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.DirectivesTotal.WithLabelValues(actionLabel(d.Action), outcome).Inc()
	return err
}

func (a *Applicator) apply(ctx context.Context, d Directive, owner models.UserID) (string, error) {
	switch d.Action {
	case ActionCreateTask:
		return a.createTask(ctx, d, owner)
	case ActionCreateEvent:
		return a.createEvent(ctx, d, owner)
	case ActionCompleteTask:
		id, ok := a.parseID(ctx, d.Action, d.TaskID)
		if !ok {
			return metrics.OutcomeNoop, nil
		}
		return touched(a.repomanager.Tasks(a.db).SetCompleted(ctx, owner, id, true))
	case ActionDeleteTask:
		id, ok := a.parseID(ctx, d.Action, d.TaskID)
		if !ok {
			return metrics.OutcomeNoop, nil
		}
		return touched(a.repomanager.Tasks(a.db).Delete(ctx, owner, id))
	case ActionDeleteEvent:
		id, ok := a.parseID(ctx, d.Action, d.EventID)
		if !ok {
			return metrics.OutcomeNoop, nil
		}
		return touched(a.repomanager.Events(a.db).Delete(ctx, owner, id))
	default:
		a.logger.Debug(ctx, "ignoring unknown action", "action", d.Action)
		return metrics.OutcomeNoop, nil
	}
}

func (a *Applicator) createTask(ctx context.Context, d Directive, owner models.UserID) (string, error) {
	task := &models.Task{
		Title:       orDefault(CleanTitle(d.Title), untitledTask),
		Description: d.Description,
		Priority:    models.NormalizePriority(d.Priority),
	}
	if d.DueDate != "" {
		if _, err := time.Parse(models.DateLayout, d.DueDate); err == nil {
			due := d.DueDate
			task.DueDate = &due
		} else {
			a.logger.Warn(ctx, "dropping unparseable due date", "due_date", d.DueDate)
		}
	}

	if _, err := a.repomanager.Tasks(a.db).Create(ctx, owner, task); err != nil {
		return "", fmt.Errorf("error creating task: %w", err)
	}
	return metrics.OutcomeApplied, nil
}

func (a *Applicator) createEvent(ctx context.Context, d Directive, owner models.UserID) (string, error) {
	date := orDefault(d.Date, a.now().Format(models.DateLayout))
	clock := orDefault(d.Time, models.DefaultEventTime)

	start, err := models.EventStart(date, clock)
	if err != nil {
		return "", fmt.Errorf("%w: bad event date or time %q %q", common.ErrorValidation, date, clock)
	}

	event := &models.CalendarEvent{
		Title:       orDefault(CleanTitle(d.Title), untitledEvent),
		Description: d.Description,
		Date:        date,
		Time:        clock,
		StartTime:   start,
		EndTime:     start,
	}

	if _, err := a.repomanager.Events(a.db).Create(ctx, owner, event); err != nil {
		return "", fmt.Errorf("error creating event: %w", err)
	}
	return metrics.OutcomeApplied, nil
}

func (a *Applicator) parseID(ctx context.Context, action, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		a.logger.Warn(ctx, "directive has no usable id", "action", action, "id", raw)
		return uuid.Nil, false
	}
	return id, true
}

func touched(ok bool, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if !ok {
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeApplied, nil
}

// actionLabel keeps metric cardinality bounded.
func actionLabel(action string) string {
	switch action {
	case ActionCreateTask, ActionCreateEvent, ActionCompleteTask, ActionDeleteTask, ActionDeleteEvent:
		return action
	}
	return "unknown"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
