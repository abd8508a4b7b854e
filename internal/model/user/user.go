// Package user models back-office admin accounts.
package user

import (
	"time"

	"github.com/deppfellow/commerce-admin/internal/model"
)

// Role is informational only; every admin user has the same privileges.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
	RoleDeveloper Role = "developer"
)

// DefaultRole is assigned when a user is created without a role.
const DefaultRole = RoleMember

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleDeveloper:
		return true
	}
	return false
}

// User is an admin account. PasswordHash and APIToken are credentials and
// are never serialized.
type User struct {
	model.Base
	Email        string     `json:"email" db:"email"`
	FirstName    *string    `json:"first_name" db:"first_name"`
	LastName     *string    `json:"last_name" db:"last_name"`
	Role         Role       `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"`
	APIToken     *string    `json:"-" db:"api_token"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`
}

// DisplayName is the first name when set, otherwise the email.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Email
}
