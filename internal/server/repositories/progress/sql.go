package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
)

var errUnknownExercise = errors.New("unknown exercise type")

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Get(ctx context.Context, email string) (*models.Progress, error) {
	query :=
		`SELECT user_email, drag_score, fill_score, mult_score, drag, fill, mult, updated_at
		 FROM user_progress
		 WHERE user_email = ?
		 `

	p := &models.Progress{}
	err := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, query), email).
		Scan(&p.UserEmail, &p.DragScore, &p.FillScore, &p.MultScore, &p.Drag, &p.Fill, &p.Mult, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Progress) error {
	query :=
		`INSERT INTO user_progress (user_email, drag_score, fill_score, mult_score, drag, fill, mult)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 `

	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query),
		p.UserEmail, p.DragScore, p.FillScore, p.MultScore, p.Drag, p.Fill, p.Mult)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("account %q: %w", p.UserEmail, common.ErrorNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) RecordExercise(ctx context.Context, email string, exercise models.ExerciseType, score int) error {
	if !exercise.Valid() {
		return fmt.Errorf("%w: %q", errUnknownExercise, exercise)
	}

	// column names come from the closed ExerciseType set, never from input
	col, flag := exercise.ScoreColumn(), exercise.FlagColumn()
	query := fmt.Sprintf(
		`UPDATE user_progress
		 SET %[1]s = CASE WHEN ? > %[1]s THEN ? ELSE %[1]s END,
		     %[2]s = TRUE,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_email = ?
		 `, col, flag)

	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query), score, score, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) Reset(ctx context.Context, email string) error {
	query :=
		`UPDATE user_progress
		 SET drag_score = 0, fill_score = 0, mult_score = 0,
		     drag = FALSE, fill = FALSE, mult = FALSE,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_email = ?
		 `

	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query), email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM user_progress WHERE user_email = ?`

	if _, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, query), email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
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
