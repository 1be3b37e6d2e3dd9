package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// UserField names a user record column usable as a lookup predicate.
type UserField string

const (
	UserFieldID         UserField = "id"
	UserFieldEmail      UserField = "email"
	UserFieldSessionID  UserField = "session_id"
	UserFieldResetToken UserField = "reset_token"
)

func (f UserField) valid() bool {
	switch f {
	case UserFieldID, UserFieldEmail, UserFieldSessionID, UserFieldResetToken:
		return true
	}
	return false
}

// UserChanges is the closed set of mutable user fields for UpdateUser. A nil
// field is left untouched. The nullable columns take a *sql.NullString so a
// caller can distinguish "write this value" from "write NULL"; an unknown
// field is unrepresentable by construction.
type UserChanges struct {
	Email          *string
	HashedPassword *string
	SessionID      *sql.NullString
	ResetToken     *sql.NullString
}

// SetString marks a nullable column for update with a concrete value.
func SetString(v string) *sql.NullString {
	return &sql.NullString{String: v, Valid: true}
}

// ClearString marks a nullable column for update with NULL.
func ClearString() *sql.NullString {
	return &sql.NullString{}
}

// UserStore is the persistence contract the auth service depends on. All
// record mutation goes through UpdateUser; every write commits immediately.
type UserStore interface {
	AddUser(ctx context.Context, email, hashedPassword string) (*User, error)
	FindUserBy(ctx context.Context, field UserField, value any) (*User, error)
	UpdateUser(ctx context.Context, id int64, changes UserChanges) error
}

type users struct {
	db     *bun.DB
	logger Logger
}

var _ UserStore = (*users)(nil)

type UserStoreOption func(*users)

func WithStoreLogger(l Logger) UserStoreOption {
	return func(u *users) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUserStore returns a UserStore backed by the given bun database handle.
// The handle is owned by the caller and injected here; the store never opens
// connections of its own.
func NewUserStore(db *bun.DB, opts ...UserStoreOption) UserStore {
	store := &users{
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store
}

func (s *users) AddUser(ctx context.Context, email, hashedPassword string) (*User, error) {
	record := &User{
		Email:          email,
		HashedPassword: hashedPassword,
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			s.logger.Debug("insert rejected by unique constraint", "email", email)
			return nil, goerrors.Wrap(ErrAlreadyRegistered, goerrors.CategoryConflict, "email already taken").
				WithCode(goerrors.CodeConflict).
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	s.logger.Debug("user record created", "id", record.ID)

	return record, nil
}

func (s *users) FindUserBy(ctx context.Context, field UserField, value any) (*User, error) {
	if !field.valid() {
		return nil, invalidField(field)
	}

	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", field), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound(field, value)
		}
		return nil, err
	}

	return record, nil
}

func (s *users) UpdateUser(ctx context.Context, id int64, changes UserChanges) error {
	q := s.db.NewUpdate().Model((*User)(nil))

	applied := 0
	if changes.Email != nil {
		q.Set("email = ?", *changes.Email)
		applied++
	}
	if changes.HashedPassword != nil {
		q.Set("hashed_password = ?", *changes.HashedPassword)
		applied++
	}
	if changes.SessionID != nil {
		q.Set("session_id = ?", *changes.SessionID)
		applied++
	}
	if changes.ResetToken != nil {
		q.Set("reset_token = ?", *changes.ResetToken)
		applied++
	}

	if applied == 0 {
		// Nothing to write; still surface NotFound for unknown ids.
		_, err := s.FindUserBy(ctx, UserFieldID, id)
		return err
	}

	// One statement per update keeps multi-field writes atomic with respect
	// to concurrent readers and serializes racing writers on the same row.
	res, err := q.Where("?TableAlias.id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return recordNotFound(UserFieldID, id)
	}

	return nil
}

// CreateUserTable creates the users table if it does not already exist.
func CreateUserTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// ResetUserTable drops and recreates the users table, discarding every
// record. The server only does this when explicitly asked to.
func ResetUserTable(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewDropTable().Model((*User)(nil)).IfExists().Exec(ctx); err != nil {
		return err
	}

	_, err := db.NewCreateTable().Model((*User)(nil)).Exec(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
