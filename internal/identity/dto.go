package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserType    enums.Role `json:"user_type"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Position    *string    `json:"position,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserPage is one page of accounts plus its page window.
type UserPage struct {
	Users      []UserDTO        `json:"users"`
	Pagination types.Pagination `json:"pagination"`
}

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	UserType string  `json:"user_type" validate:"required"`
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required"`
	Position *string `json:"position,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// UpdateUserRequest is the payload for a partial account update. Nil
// fields are left untouched.
type UpdateUserRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	UserType string    `json:"user_type" validate:"required"`
	Username *string   `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password *string   `json:"password,omitempty" validate:"omitempty,min=8"`
	FullName *string   `json:"full_name,omitempty"`
	Position *string   `json:"position,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// DeleteUserRequest identifies the account to remove. Permanent deletes
// the row; otherwise the account is deactivated.
type DeleteUserRequest struct {
	UserID    uuid.UUID `json:"user_id" validate:"required"`
	UserType  string    `json:"user_type" validate:"required"`
	Permanent bool      `json:"permanent"`
}

// FromRecord converts a partition record to its transport shape,
// dropping the password hash.
func FromRecord(r *Record) *UserDTO {
	if r == nil {
		return nil
	}
	return &UserDTO{
		ID:          r.ID,
		UserType:    r.Role,
		Username:    r.Username,
		Email:       r.Email,
		FullName:    r.FullName,
		IsActive:    r.IsActive,
		LastLoginAt: r.LastLoginAt,
		Position:    r.Position,
		Phone:       r.Phone,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
