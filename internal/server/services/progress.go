package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/repomanager"
)

// ProgressService records exercise completions. Scores only ever grow:
// a submission replaces the stored score for its exercise when it is
// strictly greater, and always marks the exercise completed.
type ProgressService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewProgressService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ProgressService {
	return &ProgressService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "progress"),
	}
}

// UpsertProgress applies one exercise submission. created reports whether
// this call inserted the user's first progress record.
func (s *ProgressService) UpsertProgress(ctx context.Context, upd models.ProgressUpdate) (created bool, err error) {
	if err := requireFields("user_email", upd.UserEmail); err != nil {
		return false, err
	}
	if upd.Score < 0 {
		return false, fmt.Errorf("%w: score must not be negative", common.ErrValidation)
	}

	exercise, err := upd.Exercise()
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	repo := s.repomanager.Progress(s.db)

	_, err = repo.Get(ctx, upd.UserEmail)
	switch {
	case err == nil:
		if err := repo.RecordExercise(ctx, upd.UserEmail, exercise, upd.Score); err != nil {
			return false, storeError("record exercise", err)
		}
		return false, nil

	case errors.Is(err, common.ErrorNotFound):
		err = repo.Create(ctx, models.NewProgress(upd.UserEmail, exercise, upd.Score))
		if err == nil {
			s.log.Debug(ctx, "progress record created", "email", upd.UserEmail, "exercise", exercise)
			return true, nil
		}
		if errors.Is(err, common.ErrorNotFound) {
			return false, fmt.Errorf("%w: no account for %s", common.ErrValidation, upd.UserEmail)
		}
		if !errors.Is(err, common.ErrConflict) {
			return false, storeError("create progress", err)
		}

		// a concurrent first submission won the insert; merge into its row
		if err := repo.RecordExercise(ctx, upd.UserEmail, exercise, upd.Score); err != nil {
			return false, storeError("record exercise", err)
		}
		return false, nil

	default:
		return false, storeError("get progress", err)
	}
}

// GetProgress returns the stored record, or a zero-valued default for users
// without one.
func (s *ProgressService) GetProgress(ctx context.Context, email string) (*models.Progress, error) {
	if err := requireFields("email", email); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Progress(s.db).Get(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.DefaultProgress(email), nil
		}
		return nil, storeError("get progress", err)
	}

	return p, nil
}

// ResetProgress clears every score and completion flag but keeps the record.
func (s *ProgressService) ResetProgress(ctx context.Context, email string) error {
	if err := requireFields("email", email); err != nil {
		return err
	}

	if err := s.repomanager.Progress(s.db).Reset(ctx, email); err != nil {
		return storeError("reset progress", err)
	}

	s.log.Info(ctx, "progress reset", "email", email)
	return nil
}

// GetCompletionStatus reports which exercises email has completed.
func (s *ProgressService) GetCompletionStatus(ctx context.Context, email string) (models.CompletionStatus, error) {
	p, err := s.GetProgress(ctx, email)
	if err != nil {
		return models.CompletionStatus{}, err
	}
	return p.Completion(), nil
}
