package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the server-assigned permission level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the read-only snapshot of an account as returned by the server.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether user may edit or delete content written by authorID.
// Authors may change their own content; admins may change anything.
func CanModify(user *User, authorID uuid.UUID) bool {
	if user == nil {
		return false
	}
	return user.ID == authorID || user.IsAdmin()
}

// TokenStore persists the bearer token outside process memory.
// Load returns an empty string when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
