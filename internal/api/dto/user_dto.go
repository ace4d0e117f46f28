package dto

import (
	"time"

	"github.com/thomlank/QuikTik/internal/domain"
)

// UserResponse is the account representation returned to clients.
type UserResponse struct {
	ID        string            `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Role      domain.GlobalRole `json:"role"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateUserRequest is the admin provisioning payload.
type CreateUserRequest struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Role      domain.GlobalRole `json:"role"`
}

// UpdateUserRequest carries optional account edits. Role and Active
// are ignored for non-admin callers.
type UpdateUserRequest struct {
	FirstName *string            `json:"first_name"`
	LastName  *string            `json:"last_name"`
	Role      *domain.GlobalRole `json:"role"`
	Active    *bool              `json:"active"`
}
