package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/server/repositories/events"
	"github.com/dmitrijs2005/donna/internal/server/repositories/messages"
	"github.com/dmitrijs2005/donna/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/donna/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Events(db dbx.DBTX) events.Repository
	Messages(db dbx.DBTX) messages.Repository
}
