package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = models.UserID("5e3c9a40-6a8e-4df0-8c61-1c1b8f1f7e22")

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rid := uuid.New()
	q := `(?s)^INSERT\s+INTO\s+messages\s*\(request_id,\s*user_id,\s*user_message,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)$`
	mock.ExpectExec(q).
		WithArgs(rid.String(), owner.String(), "hello", "processing").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), owner, rid, "hello"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinish(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rid := uuid.New()
	q := `(?s)^UPDATE\s+messages\s+SET\s+donna_response\s*=\s*\$1,\s*status\s*=\s*\$2\s+WHERE\s+request_id\s*=\s*\$3\s+AND\s+user_id\s*=\s*\$4$`
	mock.ExpectExec(q).
		WithArgs("hi there", "completed", rid.String(), owner.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Finish(context.Background(), owner, rid, "hi there", models.MessageCompleted))
}

func TestFinish_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+messages`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Finish(context.Background(), owner, uuid.New(), "x", models.MessageError)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecentCompleted_ReturnsOldestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+user_message,\s*COALESCE\(donna_response,\s*''\)\s+FROM\s+messages\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$3$`
	rows := sqlmock.NewRows([]string{"user_message", "donna_response"}).
		AddRow("third", "r3").
		AddRow("second", "r2").
		AddRow("first", "r1")
	mock.ExpectQuery(q).WithArgs(owner.String(), "completed", 5).WillReturnRows(rows)

	got, err := repo.RecentCompleted(context.Background(), owner, 5)
	require.NoError(t, err)
	assert.Equal(t, []models.Turn{
		{UserMessage: "first", DonnaResponse: "r1"},
		{UserMessage: "second", DonnaResponse: "r2"},
		{UserMessage: "third", DonnaResponse: "r3"},
	}, got)
}

func TestRecentCompleted_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT`).WillReturnError(errors.New("db down"))

	_, err := repo.RecentCompleted(context.Background(), owner, 50)
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}
