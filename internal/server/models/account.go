// Package models defines server-side data models persisted in the database
// and the projections returned to callers.
package models

import "time"

// Role names reported for accounts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is a registered user's identity and credential record.
type Account struct {
	Email        string
	Username     string
	PasswordHash []byte
	IsAdmin      bool
	CreatedAt    time.Time
}

// Role returns RoleAdmin for administrators and RoleUser otherwise.
func (a *Account) Role() string {
	return roleOf(a.IsAdmin)
}

// View returns the public projection of the account. The password hash
// is never part of it.
func (a *Account) View() AccountView {
	return AccountView{
		Email:    a.Email,
		Username: a.Username,
		Role:     a.Role(),
		IsAdmin:  a.IsAdmin,
	}
}

// AccountView is the single-account projection returned by lookups.
type AccountView struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
}

// AccountSummary is one row of the administrative account listing.
type AccountSummary struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     string          `json:"role"`
	Progress ProgressSummary `json:"progress"`
}

// ProgressSummary condenses a progress record for listings. Score is the
// sum of the per-exercise scores.
type ProgressSummary struct {
	Drag  bool `json:"drag"`
	Fill  bool `json:"fill"`
	Mult  bool `json:"mult"`
	Score int  `json:"score"`
}

// NewAccountSummary builds a listing row; p may be nil when the account has
// no progress yet.
func NewAccountSummary(a *Account, p *Progress) *AccountSummary {
	s := &AccountSummary{
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role(),
	}
	if p != nil {
		s.Progress = p.Summary()
	}
	return s
}

func roleOf(isAdmin bool) string {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}
