package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (email, username, password_hash, is_admin)
		 VALUES (?, ?, ?, ?)
		 `

	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query),
		account.Email, account.Username, string(account.PasswordHash), account.IsAdmin)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT email, username, password_hash, is_admin, created_at FROM accounts
		 WHERE email = ?
		 `

	a := &models.Account{}
	var hash string
	err := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, query), email).
		Scan(&a.Email, &a.Username, &hash, &a.IsAdmin, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.PasswordHash = []byte(hash)
	return a, nil
}

func (r *SQLRepository) Update(ctx context.Context, email, username string, passwordHash []byte) error {
	query := `UPDATE accounts SET username = ? WHERE email = ?`
	args := []any{username, email}

	if len(passwordHash) > 0 {
		query = `UPDATE accounts SET username = ?, password_hash = ? WHERE email = ?`
		args = []any{username, string(passwordHash), email}
	}

	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query), args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM accounts WHERE email = ?`

	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query), email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) ListWithProgress(ctx context.Context) ([]*models.AccountSummary, error) {
	query :=
		`SELECT a.email, a.username, a.is_admin,
		        COALESCE(p.drag_score, 0), COALESCE(p.fill_score, 0), COALESCE(p.mult_score, 0),
		        COALESCE(p.drag, FALSE), COALESCE(p.fill, FALSE), COALESCE(p.mult, FALSE)
		 FROM accounts a
		 LEFT JOIN user_progress p ON p.user_email = a.email
		 ORDER BY a.email
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AccountSummary, 0)

	for rows.Next() {
		a := &models.Account{}
		p := &models.Progress{}
		if err := rows.Scan(&a.Email, &a.Username, &a.IsAdmin,
			&p.DragScore, &p.FillScore, &p.MultScore,
			&p.Drag, &p.Fill, &p.Mult); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, models.NewAccountSummary(a, p))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
