package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/progress"
)

type RepositoryManager interface {
	Dialect() dbx.Dialect
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Progress(db dbx.DBTX) progress.Repository
}
