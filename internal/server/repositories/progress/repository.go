// Package progress stores per-account exercise completion records.
package progress

import (
	"context"

	"github.com/dmitrijs2005/learnprogress/internal/server/models"
)

// Repository persists at most one progress record per account email.
type Repository interface {
	Get(ctx context.Context, email string) (*models.Progress, error)
	Create(ctx context.Context, p *models.Progress) error
	// RecordExercise raises the exercise score when score is strictly
	// greater than the stored one and marks the exercise completed.
	RecordExercise(ctx context.Context, email string, exercise models.ExerciseType, score int) error
	Reset(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
}
