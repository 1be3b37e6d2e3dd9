// Package auth implements a self-contained user authentication service:
// credential storage, session lifecycle, and password-reset token issuance
// over a persistent user record store.
//
// The store:
//   - UserStore owns all user records. Lookups take a single field/value
//     predicate from a closed set of columns; updates take a UserChanges
//     struct, so unknown fields are a compile error rather than a runtime
//     probe. Every multi-field update is one SQL statement, atomic with
//     respect to concurrent readers.
//
// The service:
//   - Auther orchestrates registration, login, session issuance/validation/
//     destruction, and password reset. The store is injected at construction;
//     there is no implicit global connection. Absence of a record is a normal
//     outcome for login and session lookup, a conflict for registration, and
//     a hard failure for the reset flows — per operation, deliberately.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter Auther uses to describe
//     registration, login, session, and password reset events. Sinks run
//     best-effort (errors are logged) so a consumer can forward them without
//     blocking authentication.
//
// Sessions and reset tokens share one generator (NewIdentifier, a v4 UUID)
// and never expire; both are opaque values resolved through the store.
package auth
