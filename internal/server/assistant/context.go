package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/llm"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
)

const (
	upcomingWindow   = 30 * 24 * time.Hour
	maxListed        = 10
	maxDescription   = 100
	DefaultHistory   = 5
	todayLayout      = "Monday, January 2, 2006"
	contextSeparator = "=========================================================="
)

// Snapshot is a user's current state as shown to the model.
type Snapshot struct {
	Text      string
	Tasks     []*models.Task
	Active    []*models.Task
	Completed []*models.Task
	Events    []*models.CalendarEvent
}

// ContextBuilder assembles the per-request context for a model call. It is
// best effort: datastore failures are logged and produce an empty result.
type ContextBuilder struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewContextBuilder(db dbx.DBTX, rm repomanager.RepositoryManager, l logging.Logger) *ContextBuilder {
	return &ContextBuilder{
		db:          db,
		repomanager: rm,
		logger:      l.With("module", "context_builder"),
		now:         time.Now,
	}
}

// Build fetches owner's tasks and the events of the next 30 days.
func (b *ContextBuilder) Build(ctx context.Context, owner models.UserID) Snapshot {
	today := b.now()

	tasks, err := b.repomanager.Tasks(b.db).ListByUser(ctx, owner)
	if err != nil {
		b.logger.Error(ctx, "error loading tasks for context", "user_id", owner, "error", err)
		return emptySnapshot()
	}

	from := today.Format(models.DateLayout)
	to := today.Add(upcomingWindow).Format(models.DateLayout)
	events, err := b.repomanager.Events(b.db).ListBetween(ctx, owner, from, to)
	if err != nil {
		b.logger.Error(ctx, "error loading events for context", "user_id", owner, "error", err)
		return emptySnapshot()
	}

	s := Snapshot{
		Tasks:     tasks,
		Active:    make([]*models.Task, 0),
		Completed: make([]*models.Task, 0),
		Events:    events,
	}
	for _, t := range tasks {
		if t.Completed {
			s.Completed = append(s.Completed, t)
		} else {
			s.Active = append(s.Active, t)
		}
	}
	s.Text = renderContext(today, s)

	return s
}

// History returns up to limit completed turns, oldest first, as
// alternating user/assistant messages. Empty sides are skipped.
func (b *ContextBuilder) History(ctx context.Context, owner models.UserID, limit int) []llm.Message {
	if limit <= 0 {
		limit = DefaultHistory
	}

	turns, err := b.repomanager.Messages(b.db).RecentCompleted(ctx, owner, limit)
	if err != nil {
		b.logger.Warn(ctx, "error loading conversation history", "user_id", owner, "error", err)
		return []llm.Message{}
	}

	out := make([]llm.Message, 0, 2*len(turns))
	for _, t := range turns {
		if t.UserMessage != "" {
			out = append(out, llm.Message{Role: llm.RoleUser, Content: t.UserMessage})
		}
		if t.DonnaResponse != "" {
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: t.DonnaResponse})
		}
	}
	return out
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Tasks:     []*models.Task{},
		Active:    []*models.Task{},
		Completed: []*models.Task{},
		Events:    []*models.CalendarEvent{},
	}
}

func renderContext(today time.Time, s Snapshot) string {
	var sb strings.Builder

	sb.WriteString("CURRENT USER CONTEXT (private, for your analysis only):\n")
	sb.WriteString(contextSeparator + "\n")
	fmt.Fprintf(&sb, "TODAY'S DATE: %s\n\n", today.Format(todayLayout))

	fmt.Fprintf(&sb, "ACTIVE TASKS (%d tasks):\n", len(s.Active))
	if len(s.Active) == 0 {
		sb.WriteString("  (no active tasks, the schedule is clear)\n")
	}
	for _, t := range s.Active[:min(len(s.Active), maxListed)] {
		sb.WriteString("- " + t.Title)
		if t.Priority != "" {
			fmt.Fprintf(&sb, " [%s]", strings.ToUpper(string(t.Priority)))
		}
		if t.DueDate != nil && *t.DueDate != "" {
			fmt.Fprintf(&sb, " (Due: %s)", *t.DueDate)
		}
		fmt.Fprintf(&sb, " {task_id: %s}\n", t.ID)
		if t.Description != "" {
			fmt.Fprintf(&sb, "  └─ %s\n", truncate(t.Description, maxDescription))
		}
	}

	fmt.Fprintf(&sb, "\nCOMPLETED TASKS: %d tasks done\n", len(s.Completed))

	fmt.Fprintf(&sb, "\nUPCOMING EVENTS (%d events):\n", len(s.Events))
	if len(s.Events) == 0 {
		sb.WriteString("  (no upcoming events scheduled)\n")
	}
	for _, e := range s.Events[:min(len(s.Events), maxListed)] {
		fmt.Fprintf(&sb, "- %s on %s", e.Title, e.Date)
		if e.Time != "" {
			fmt.Fprintf(&sb, " at %s", e.Time)
		}
		fmt.Fprintf(&sb, " {event_id: %s}\n", e.ID)
		if e.Description != "" {
			fmt.Fprintf(&sb, "  └─ %s\n", truncate(e.Description, maxDescription))
		}
	}

	sb.WriteString("\n" + contextSeparator)
	return sb.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
