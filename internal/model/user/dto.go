package user

import (
	"github.com/deppfellow/commerce-admin/internal/validation"
	"github.com/google/uuid"
)

// ------------------------------------------------------------

// CreateUserPayload is the body of POST /admin/users.
type CreateUserPayload struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName *string `json:"first_name" validate:"omitempty"`
	LastName  *string `json:"last_name" validate:"omitempty"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=admin member developer"`
	Password  string  `json:"password" validate:"required"`
}

func (p *CreateUserPayload) Validate() error {
	return validation.Validator().Struct(p)
}

// Input returns the user fields without the password, which travels to the
// service separately so it only ever exists there as a hash.
func (p *CreateUserPayload) Input() CreateUserInput {
	input := CreateUserInput{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      DefaultRole,
	}
	if p.Role != nil {
		input.Role = *p.Role
	}
	return input
}

// CreateUserInput is what the user service persists alongside the hash.
type CreateUserInput struct {
	Email     string
	FirstName *string
	LastName  *string
	Role      Role
}

// ------------------------------------------------------------

type GetUserByIDPayload struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (p *GetUserByIDPayload) Validate() error {
	return validation.Validator().Struct(p)
}

// UUID returns the parsed id; Validate has already checked the format.
func (p *GetUserByIDPayload) UUID() uuid.UUID {
	return uuid.MustParse(p.ID)
}

// ------------------------------------------------------------

type ListUsersPayload struct{}

func (p *ListUsersPayload) Validate() error {
	return nil
}

// ------------------------------------------------------------

// UserResponse is the {"user": ...} envelope.
type UserResponse struct {
	User *User `json:"user"`
}

// UsersResponse is the {"users": [...]} envelope.
type UsersResponse struct {
	Users []User `json:"users"`
}
