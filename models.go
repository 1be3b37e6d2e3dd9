package auth

import (
	"github.com/uptrace/bun"
)

// User is the user model. Records are created by registration and mutated in
// place by the session and password-reset flows; the store owns every record
// and assigns IDs on insert.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             int64   `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email          string  `bun:"email,notnull,unique" json:"email,omitempty"`
	HashedPassword string  `bun:"hashed_password,notnull" json:"-"`
	SessionID      *string `bun:"session_id,nullzero" json:"-"`
	ResetToken     *string `bun:"reset_token,nullzero" json:"-"`
}

// HasSession reports whether the user currently holds a session identifier.
func (u *User) HasSession() bool {
	return u != nil && u.SessionID != nil && *u.SessionID != ""
}

// HasResetPending reports whether a password reset is in flight for the user.
func (u *User) HasResetPending() bool {
	return u != nil && u.ResetToken != nil && *u.ResetToken != ""
}
