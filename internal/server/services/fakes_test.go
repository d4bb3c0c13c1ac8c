package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/events"
	"github.com/dmitrijs2005/donna/internal/server/repositories/messages"
	"github.com/dmitrijs2005/donna/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/donna/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	lookupErr  error
	createErr  error
	created    []*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byUsername: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byUsername[u.UserName] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = models.UserID(uuid.NewString())
	u.CreatedAt = time.Now()
	f.created = append(f.created, u)
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTasksRepo struct {
	rows []*models.Task
	err  error

	lastPatch models.TaskPatch
	lastID    uuid.UUID
	lastOwner models.UserID
}

func (f *fakeTasksRepo) Create(_ context.Context, owner models.UserID, t *models.Task) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *t
	c.ID = uuid.New()
	c.UserID = owner
	f.rows = append(f.rows, &c)
	return &c, nil
}

func (f *fakeTasksRepo) ListByUser(_ context.Context, owner models.UserID) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Task{}
	for _, t := range f.rows {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) Update(_ context.Context, owner models.UserID, id uuid.UUID, p models.TaskPatch) (bool, error) {
	f.lastOwner, f.lastID, f.lastPatch = owner, id, p
	return true, f.err
}

func (f *fakeTasksRepo) SetCompleted(_ context.Context, owner models.UserID, id uuid.UUID, completed bool) (bool, error) {
	return false, f.err
}

func (f *fakeTasksRepo) Delete(_ context.Context, owner models.UserID, id uuid.UUID) (bool, error) {
	f.lastOwner, f.lastID = owner, id
	return false, f.err
}

type fakeEventsRepo struct {
	rows []*models.CalendarEvent
	err  error

	lastPatch models.EventPatch
}

func (f *fakeEventsRepo) Create(_ context.Context, owner models.UserID, e *models.CalendarEvent) (*models.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *e
	c.ID = uuid.New()
	c.UserID = owner
	f.rows = append(f.rows, &c)
	return &c, nil
}

func (f *fakeEventsRepo) ListByUser(_ context.Context, owner models.UserID) ([]*models.CalendarEvent, error) {
	return f.rows, f.err
}

func (f *fakeEventsRepo) ListBetween(_ context.Context, owner models.UserID, from, to string) ([]*models.CalendarEvent, error) {
	return []*models.CalendarEvent{}, f.err
}

func (f *fakeEventsRepo) Update(_ context.Context, owner models.UserID, id uuid.UUID, p models.EventPatch) (bool, error) {
	f.lastPatch = p
	return true, f.err
}

func (f *fakeEventsRepo) Delete(context.Context, models.UserID, uuid.UUID) (bool, error) {
	return true, f.err
}

type finished struct {
	requestID uuid.UUID
	response  string
	status    models.MessageStatus
}

type fakeMessagesRepo struct {
	created   []uuid.UUID
	finished  []finished
	turns     []models.Turn
	createErr error
	finishErr error
	recentErr error
	lastLimit int
}

func (f *fakeMessagesRepo) Create(_ context.Context, _ models.UserID, requestID uuid.UUID, _ string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, requestID)
	return nil
}

func (f *fakeMessagesRepo) Finish(_ context.Context, _ models.UserID, requestID uuid.UUID, response string, status models.MessageStatus) error {
	f.finished = append(f.finished, finished{requestID, response, status})
	if status == models.MessageCompleted {
		return f.finishErr
	}
	return nil
}

func (f *fakeMessagesRepo) RecentCompleted(_ context.Context, _ models.UserID, limit int) ([]models.Turn, error) {
	f.lastLimit = limit
	return f.turns, f.recentErr
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	tasks    *fakeTasksRepo
	events   *fakeEventsRepo
	messages *fakeMessagesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		tasks:    &fakeTasksRepo{},
		events:   &fakeEventsRepo{},
		messages: &fakeMessagesRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository              { return m.tasks }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository            { return m.events }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return m.messages }
