package auth

import "github.com/google/uuid"

// NewIdentifier returns a fresh opaque identifier: the textual form of a
// version 4 UUID drawn from a cryptographically strong RNG. Session
// identifiers and password reset tokens share this generator.
func NewIdentifier() string {
	return uuid.NewString()
}
