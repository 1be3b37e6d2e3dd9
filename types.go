package auth

import "context"

// Authenticator holds the operations the HTTP layer calls into.
type Authenticator interface {
	RegisterUser(ctx context.Context, email, password string) (*User, error)
	ValidLogin(ctx context.Context, email, password string) (bool, error)
	CreateSession(ctx context.Context, email string) (string, error)
	GetUserFromSessionID(ctx context.Context, sessionID string) (*User, error)
	DestroySession(ctx context.Context, userID int64) error
	GetResetPasswordToken(ctx context.Context, email string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}

var _ Authenticator = (*Auther)(nil)
