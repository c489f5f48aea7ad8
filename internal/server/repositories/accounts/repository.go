// Package accounts stores user identity and credential records.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/learnprogress/internal/server/models"
)

// Repository persists accounts keyed by email.
type Repository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// Update replaces the username and, when passwordHash is non-empty, the
	// stored hash.
	Update(ctx context.Context, email, username string, passwordHash []byte) error
	Delete(ctx context.Context, email string) error
	ListWithProgress(ctx context.Context) ([]*models.AccountSummary, error)
}
