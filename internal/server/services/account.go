// Package services contains server-side business logic. This file implements
// AccountService, which handles registration, login, token issuing and the
// account management operations.
package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/cryptox"
	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/auth"
	"github.com/dmitrijs2005/learnprogress/internal/server/config"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// AccountService provides authentication and account operations:
// - Register / RegisterAdmin: create accounts with a bcrypt password hash
// - Login: verify credentials and mint a signed token
// - UpdateAccount, GetAccount, ListAccounts, CheckAdminRole, DeleteAccount
type AccountService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	hasher                *cryptox.PasswordHasher
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	log                   logging.Logger

	// dummyHash is compared against on unknown emails so both login
	// failures cost one bcrypt comparison.
	dummyHash []byte
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AccountService {
	hasher := cryptox.NewPasswordHasher(cfg.PasswordHashCost)

	dummy, err := hasher.Hash(hex.EncodeToString(common.GenerateRandByteArray(16)))
	if err != nil {
		log.Warn(context.Background(), "dummy hash generation failed", "error", err)
	}

	return &AccountService{
		db:                    db,
		repomanager:           m,
		hasher:                hasher,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		log:                   log.With("module", "accounts"),
		dummyHash:             dummy,
	}
}

// Register creates a regular account.
func (s *AccountService) Register(ctx context.Context, email, username, password string) (*models.Account, error) {
	return s.register(ctx, email, username, password, false)
}

// RegisterAdmin creates an administrator account. It is never reachable
// over HTTP.
func (s *AccountService) RegisterAdmin(ctx context.Context, email, username, password string) (*models.Account, error) {
	return s.register(ctx, email, username, password, true)
}

func (s *AccountService) register(ctx context.Context, email, username, password string, isAdmin bool) (*models.Account, error) {
	if err := requireFields("email", email, "username", username, "password", password); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}

	if err := s.repomanager.Accounts(s.db).Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("%w: email or username already registered", common.ErrConflict)
		}
		return nil, storeError("create account", err)
	}

	s.log.Info(ctx, "account registered", "email", email, "admin", isAdmin)
	return account, nil
}

// Login verifies the credentials and returns a signed token for email.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if err := requireFields("email", email, "password", password); err != nil {
		return "", err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return "", common.ErrInvalidCredentials
		}
		return "", storeError("get account", err)
	}

	if err := s.checkPassword(account, password); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(account.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: error signing token: %w", common.ErrorInternal, err)
	}

	return token, nil
}

// UpdateAccount changes the username and, when newPassword is set, the
// password, after verifying currentPassword.
func (s *AccountService) UpdateAccount(ctx context.Context, email, username, currentPassword, newPassword string) error {
	if err := requireFields("email", email, "username", username, "currentPassword", currentPassword); err != nil {
		return err
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return storeError("get account", err)
	}

	if err := s.checkPassword(account, currentPassword); err != nil {
		return err
	}

	var newHash []byte
	if newPassword != "" {
		if newHash, err = s.hashPassword(newPassword); err != nil {
			return err
		}
	}

	if err := repo.Update(ctx, email, username, newHash); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return fmt.Errorf("%w: username already taken", common.ErrConflict)
		}
		return storeError("update account", err)
	}

	s.log.Info(ctx, "account updated", "email", email, "password_changed", newHash != nil)
	return nil
}

// GetAccount returns the public view of one account.
func (s *AccountService) GetAccount(ctx context.Context, email string) (models.AccountView, error) {
	if err := requireFields("email", email); err != nil {
		return models.AccountView{}, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		return models.AccountView{}, storeError("get account", err)
	}

	return account.View(), nil
}

// ListAccounts returns every account with its progress summary.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.AccountSummary, error) {
	list, err := s.repomanager.Accounts(s.db).ListWithProgress(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	return list, nil
}

// CheckAdminRole returns nil when email belongs to an administrator and
// ErrForbidden for regular accounts.
func (s *AccountService) CheckAdminRole(ctx context.Context, email string) error {
	if err := requireFields("email", email); err != nil {
		return err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		return storeError("get account", err)
	}

	if !account.IsAdmin {
		return fmt.Errorf("%w: %s is not an administrator", common.ErrForbidden, email)
	}
	return nil
}

// DeleteAccount removes the progress record and the account in one
// transaction. A missing account rolls the transaction back.
func (s *AccountService) DeleteAccount(ctx context.Context, email string) error {
	if err := requireFields("email", email); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Progress(tx).DeleteByEmail(ctx, email); err != nil {
			return err
		}
		return s.repomanager.Accounts(tx).Delete(ctx, email)
	})
	if err != nil {
		return storeError("delete account", err)
	}

	s.log.Info(ctx, "account deleted", "email", email)
	return nil
}

// EnsureAdmin creates the administrator account unless an account with the
// same email already exists. It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, username, password string) (bool, error) {
	_, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, storeError("get account", err)
	}

	if _, err := s.RegisterAdmin(ctx, email, username, password); err != nil {
		return false, err
	}
	return true, nil
}

// --- helpers below ---

func (s *AccountService) hashPassword(password string) ([]byte, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return hash, nil
}

func (s *AccountService) checkPassword(account *models.Account, password string) error {
	err := s.hasher.Compare(account.PasswordHash, password)
	if err == nil {
		return nil
	}
	if errors.Is(err, cryptox.ErrMismatch) {
		return common.ErrInvalidCredentials
	}
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
