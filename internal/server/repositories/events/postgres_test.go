package events

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = models.UserID("0b0e7a4c-1b53-4d0c-9f0e-3d5c1c2b7a10")

var eventCols = []string{"id", "user_id", "title", "description", "to_char", "time", "start_time", "end_time", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	start := time.Date(2025, 12, 21, 14, 0, 0, 0, time.UTC)

	q := `(?s)^INSERT\s+INTO\s+calendar_events\s*\(user_id,\s*title,\s*description,\s*date,\s*time,\s*start_time,\s*end_time\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id,.*created_at$`
	mock.ExpectQuery(q).
		WithArgs(owner.String(), "Dentist", "", "2025-12-21", "14:00", start, start).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(id.String(), owner.String(), "Dentist", "", "2025-12-21", "14:00", start, start, time.Now()))

	got, err := repo.Create(context.Background(), owner, &models.CalendarEvent{
		Title: "Dentist", Date: "2025-12-21", Time: "14:00", StartTime: start, EndTime: start,
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "2025-12-21", got.Date)
	assert.Equal(t, got.StartTime, got.EndTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBetween(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+calendar_events\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s*>=\s*\$2\s+AND\s+date\s*<=\s*\$3\s+ORDER\s+BY\s+date\s+ASC,\s*time\s+ASC$`
	ts := time.Now()
	mock.ExpectQuery(q).
		WithArgs(owner.String(), "2025-01-01", "2025-01-31").
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(uuid.NewString(), owner.String(), "A", "", "2025-01-02", "09:00", ts, ts, ts))

	got, err := repo.ListBetween(context.Background(), owner, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestListByUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT`).WithArgs(owner.String()).WillReturnError(errors.New("db down"))

	_, err := repo.ListByUser(context.Background(), owner)
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestUpdate_OnlySuppliedFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	date := "2025-02-03"
	end := time.Date(2025, 2, 3, 11, 0, 0, 0, time.UTC)

	q := `(?s)^UPDATE\s+calendar_events\s+SET\s+date\s*=\s*\$1,\s*end_time\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s+AND\s+user_id\s*=\s*\$4$`
	mock.ExpectExec(q).
		WithArgs(date, end, id.String(), owner.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Update(context.Background(), owner, id, models.EventPatch{Date: &date, EndTime: &end})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_AbsentRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+calendar_events\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`).
		WithArgs(id.String(), owner.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), owner, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
