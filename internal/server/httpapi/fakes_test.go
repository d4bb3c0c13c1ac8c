package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/auth"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/ratelimit"
	"github.com/dmitrijs2005/donna/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	registerErr error
	loginErr    error
	user        *models.User
}

func (f *fakeUsers) Register(_ context.Context, username, email, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u1", UserName: username, Email: email}, nil
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	tok, err := auth.GenerateToken(auth.Identity{UserID: f.user.ID.String(), Username: f.user.UserName}, testSecret, time.Hour)
	if err != nil {
		return nil, err
	}
	return &services.LoginResult{Token: tok, User: f.user}, nil
}

func (f *fakeUsers) Authenticate(token string) (*auth.Claims, error) {
	c, err := auth.ParseToken(token, testSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return c, nil
}

type fakeTasks struct {
	rows      map[models.UserID][]*models.Task
	err       error
	lastInput services.TaskInput
	lastID    uuid.UUID
}

func (f *fakeTasks) List(_ context.Context, owner models.UserID) ([]*models.Task, error) {
	return f.rows[owner], f.err
}

func (f *fakeTasks) Create(_ context.Context, owner models.UserID, in services.TaskInput) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := &models.Task{ID: uuid.New(), UserID: owner, Title: "Task", Priority: models.PriorityMedium}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if f.rows == nil {
		f.rows = map[models.UserID][]*models.Task{}
	}
	f.rows[owner] = append(f.rows[owner], t)
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, _ models.UserID, id uuid.UUID, in services.TaskInput) error {
	f.lastID, f.lastInput = id, in
	return f.err
}

func (f *fakeTasks) Delete(_ context.Context, _ models.UserID, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

type fakeEvents struct {
	rows      []*models.CalendarEvent
	err       error
	lastInput services.EventInput
}

func (f *fakeEvents) List(context.Context, models.UserID) ([]*models.CalendarEvent, error) {
	return f.rows, f.err
}

func (f *fakeEvents) Create(_ context.Context, owner models.UserID, in services.EventInput) (*models.CalendarEvent, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.CalendarEvent{ID: uuid.New(), UserID: owner, Title: "Event", Date: "2025-03-10", Time: "00:00"}, nil
}

func (f *fakeEvents) Update(_ context.Context, _ models.UserID, _ uuid.UUID, in services.EventInput) error {
	f.lastInput = in
	return f.err
}

func (f *fakeEvents) Delete(context.Context, models.UserID, uuid.UUID) error { return f.err }

type fakeChat struct {
	reply     *services.ChatReply
	err       error
	turns     []models.Turn
	lastOwner models.UserID
}

func (f *fakeChat) Send(_ context.Context, owner models.UserID, message string) (*services.ChatReply, error) {
	f.lastOwner = owner
	if strings.TrimSpace(message) == "" {
		return nil, common.Detail(common.ErrorValidation, "Empty message")
	}
	return f.reply, f.err
}

func (f *fakeChat) History(_ context.Context, owner models.UserID) ([]models.Turn, error) {
	f.lastOwner = owner
	return f.turns, f.err
}

type fakeLimiter struct {
	decision ratelimit.Decision
	err      error
}

func (f *fakeLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return f.decision, f.err
}

type testEnv struct {
	users   *fakeUsers
	tasks   *fakeTasks
	events  *fakeEvents
	chat    *fakeChat
	limiter *fakeLimiter
	server  *Server
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:   &fakeUsers{user: &models.User{ID: "u1", UserName: "alice", Email: "alice@x.com"}},
		tasks:   &fakeTasks{},
		events:  &fakeEvents{},
		chat:    &fakeChat{},
		limiter: &fakeLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 20, Remaining: 19}},
	}
	env.server = NewServer(Deps{
		Users:       env.users,
		Tasks:       env.tasks,
		Events:      env.events,
		Chat:        env.chat,
		Limiter:     env.limiter,
		Logger:      logging.Nop(),
		CORSOrigins: []string{"*"},
	})
	env.server.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	env.handler = env.server.Routes()
	return env
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{UserID: userID, Username: "alice"}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
