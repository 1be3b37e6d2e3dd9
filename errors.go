package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUserNotFound is the error we return when no record matches a lookup predicate
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidField is the error for a field name outside the recognized user fields
var ErrInvalidField = errors.New("invalid user field")

// ErrAlreadyRegistered is the error for a duplicate email on registration
var ErrAlreadyRegistered = errors.New("email already registered")

// ErrCannotIssueToken is the error for a reset token request against an unknown email
var ErrCannotIssueToken = errors.New("cannot issue reset token")

// ErrCannotUpdatePassword is the error for a reset redemption against an unknown token
var ErrCannotUpdatePassword = errors.New("cannot update password")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the error for a failed password comparison
var ErrMismatchedHashAndPassword = errors.New("hashed password does not match")

// IsNotFound will check for record-not-found errors, either our sentinel or
// a wrapped not-found category from the errors library.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUserNotFound) || goerrors.IsNotFound(err)
}

// IsInvalidField will check for unrecognized-field errors.
func IsInvalidField(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidField)
}

// IsConflict will check for duplicate-registration errors.
func IsConflict(err error) bool {
	return err != nil && errors.Is(err, ErrAlreadyRegistered)
}

func recordNotFound(field UserField, value any) error {
	return goerrors.Wrap(ErrUserNotFound, goerrors.CategoryNotFound, "no user record matches predicate").
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{
			"field": string(field),
			"value": value,
		})
}

func invalidField(field UserField) error {
	return goerrors.Wrap(ErrInvalidField, goerrors.CategoryBadInput, "unrecognized user field").
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field": string(field),
		})
}
