package assistant

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/events"
	"github.com/dmitrijs2005/donna/internal/server/repositories/messages"
	"github.com/dmitrijs2005/donna/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/donna/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- in-memory repositories, scoped by owner like the real ones ---

type memTasks struct {
	rows      []*models.Task
	createErr error
	listErr   error
}

func (m *memTasks) Create(_ context.Context, owner models.UserID, t *models.Task) (*models.Task, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	c := *t
	c.ID = uuid.New()
	c.UserID = owner
	c.CreatedAt = time.Now()
	m.rows = append(m.rows, &c)
	return &c, nil
}

func (m *memTasks) ListByUser(_ context.Context, owner models.UserID) ([]*models.Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*models.Task{}
	for _, t := range m.rows {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) find(owner models.UserID, id uuid.UUID) (int, *models.Task) {
	for i, t := range m.rows {
		if t.ID == id && t.UserID == owner {
			return i, t
		}
	}
	return -1, nil
}

func (m *memTasks) Update(_ context.Context, owner models.UserID, id uuid.UUID, p models.TaskPatch) (bool, error) {
	_, t := m.find(owner, id)
	if t == nil {
		return false, nil
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return true, nil
}

func (m *memTasks) SetCompleted(_ context.Context, owner models.UserID, id uuid.UUID, completed bool) (bool, error) {
	_, t := m.find(owner, id)
	if t == nil {
		return false, nil
	}
	t.Completed = completed
	return true, nil
}

func (m *memTasks) Delete(_ context.Context, owner models.UserID, id uuid.UUID) (bool, error) {
	i, _ := m.find(owner, id)
	if i < 0 {
		return false, nil
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return true, nil
}

type memEvents struct {
	rows      []*models.CalendarEvent
	createErr error
	listErr   error

	lastFrom, lastTo string
}

func (m *memEvents) Create(_ context.Context, owner models.UserID, e *models.CalendarEvent) (*models.CalendarEvent, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	c := *e
	c.ID = uuid.New()
	c.UserID = owner
	m.rows = append(m.rows, &c)
	return &c, nil
}

func (m *memEvents) ListByUser(_ context.Context, owner models.UserID) ([]*models.CalendarEvent, error) {
	return m.ListBetween(context.Background(), owner, "0000-01-01", "9999-12-31")
}

func (m *memEvents) ListBetween(_ context.Context, owner models.UserID, from, to string) ([]*models.CalendarEvent, error) {
	m.lastFrom, m.lastTo = from, to
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*models.CalendarEvent{}
	for _, e := range m.rows {
		if e.UserID == owner && e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvents) Update(context.Context, models.UserID, uuid.UUID, models.EventPatch) (bool, error) {
	return false, nil
}

func (m *memEvents) Delete(_ context.Context, owner models.UserID, id uuid.UUID) (bool, error) {
	for i, e := range m.rows {
		if e.ID == id && e.UserID == owner {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memMessages struct {
	turns []models.Turn
	err   error

	lastLimit int
}

func (m *memMessages) Create(context.Context, models.UserID, uuid.UUID, string) error { return nil }
func (m *memMessages) Finish(context.Context, models.UserID, uuid.UUID, string, models.MessageStatus) error {
	return nil
}
func (m *memMessages) RecentCompleted(_ context.Context, _ models.UserID, limit int) ([]models.Turn, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.turns, nil
}

type fakeRepoManager struct {
	tasks    *memTasks
	events   *memEvents
	messages *memMessages
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{tasks: &memTasks{}, events: &memEvents{}, messages: &memMessages{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return nil }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository              { return m.tasks }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository            { return m.events }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return m.messages }

var errDB = errors.New("db down")
