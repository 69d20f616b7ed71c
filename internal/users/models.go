package users

import (
	"errors"
	"time"

	"dailyon/internal/rbac"
)

// User is the credential record owned by the user store.
// The auth layer only reads it; PasswordHash never leaves the server.
type User struct {
	ID           int64        `json:"id" db:"id"`
	LoginID      string       `json:"loginId" db:"login_id"`
	PasswordHash string       `json:"-" db:"password_hash"`
	DisplayName  string       `json:"displayName" db:"display_name"`
	Roles        rbac.RoleSet `json:"-"`
	Enabled      bool         `json:"enabled" db:"enabled"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser is the input for creating a credential record.
type NewUser struct {
	LoginID      string
	PasswordHash string
	DisplayName  string
	Roles        rbac.RoleSet
}

// Profile is the public view of a user.
type Profile struct {
	ID          int64    `json:"id"`
	LoginID     string   `json:"loginId"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
	Enabled     bool     `json:"enabled"`
}

// Summary is the member-search view of a user.
type Summary struct {
	ID          int64  `json:"id"`
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		LoginID:     u.LoginID,
		DisplayName: u.DisplayName,
		Roles:       u.Roles.Names(),
		Authorities: u.Roles.Authorities(),
		Enabled:     u.Enabled,
	}
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, LoginID: u.LoginID, DisplayName: u.DisplayName}
}

var (
	ErrNotFound        = errors.New("users: not found")
	ErrLoginIDTaken    = errors.New("users: login id already registered")
	ErrInvalidArgument = errors.New("users: invalid argument")
)
