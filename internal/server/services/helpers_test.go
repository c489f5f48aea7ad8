package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/config"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/progress"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		PasswordHashCost:      bcrypt.MinCost,
	}
}

// newSQLiteStore returns a migrated in-memory database private to the test.
func newSQLiteStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dbx.Open(ctx, dbx.SQLite, "file:svc_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(dbx.SQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newAccountService(t *testing.T) (*AccountService, *sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db, m := newSQLiteStore(t)
	return NewAccountService(db, m, testConfig(), logging.NewNopLogger()), db, m
}

// --- fakes for store failure paths ---

type fakeAccountsRepo struct {
	accounts.Repository
	getOut *models.Account
	err    error
}

func (f *fakeAccountsRepo) Create(context.Context, *models.Account) error { return f.err }
func (f *fakeAccountsRepo) GetByEmail(context.Context, string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getOut, nil
}
func (f *fakeAccountsRepo) Update(context.Context, string, string, []byte) error { return f.err }
func (f *fakeAccountsRepo) Delete(context.Context, string) error                 { return f.err }
func (f *fakeAccountsRepo) ListWithProgress(context.Context) ([]*models.AccountSummary, error) {
	return nil, f.err
}

type fakeProgressRepo struct {
	progress.Repository
	getErr    error
	createErr error
	recordErr error
	resetErr  error
	deleteErr error

	recorded []models.ExerciseType
}

func (f *fakeProgressRepo) Get(_ context.Context, email string) (*models.Progress, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return models.DefaultProgress(email), nil
}
func (f *fakeProgressRepo) Create(context.Context, *models.Progress) error { return f.createErr }
func (f *fakeProgressRepo) RecordExercise(_ context.Context, _ string, e models.ExerciseType, _ int) error {
	f.recorded = append(f.recorded, e)
	return f.recordErr
}
func (f *fakeProgressRepo) Reset(context.Context, string) error         { return f.resetErr }
func (f *fakeProgressRepo) DeleteByEmail(context.Context, string) error { return f.deleteErr }

type fakeRepoManager struct {
	a *fakeAccountsRepo
	p *fakeProgressRepo
}

func (m *fakeRepoManager) Dialect() dbx.Dialect                           { return dbx.SQLite }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository       { return m.a }
func (m *fakeRepoManager) Progress(db dbx.DBTX) progress.Repository       { return m.p }
