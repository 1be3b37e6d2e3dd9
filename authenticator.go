package auth

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther implements registration, login, session lifecycle, and password
// reset over an injected UserStore. It never mutates a record directly; all
// writes go through the store's update operation.
type Auther struct {
	store        UserStore
	logger       Logger
	activitySink ActivitySink
	identifier   func() string
}

// NewAuthenticator returns a new Auther backed by the given store.
func NewAuthenticator(store UserStore) *Auther {
	return &Auther{
		store:        store,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		identifier:   NewIdentifier,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithIdentifierSource overrides the session id / reset token generator.
func (s *Auther) WithIdentifierSource(fn func() string) *Auther {
	if fn != nil {
		s.identifier = fn
	}
	return s
}

// RegisterUser creates a new user record with a hashed password. A user
// already holding the email is a conflict; the store reporting no match is
// the success path, not an error.
func (s *Auther) RegisterUser(ctx context.Context, email, password string) (*User, error) {
	existing, err := s.store.FindUserBy(ctx, UserFieldEmail, email)
	if err != nil && !IsNotFound(err) {
		s.logger.Error("register lookup failed", "email", email, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
	}

	if existing != nil {
		return nil, goerrors.Wrap(ErrAlreadyRegistered, goerrors.CategoryConflict, "user already exists").
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	user, err := s.store.AddUser(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventUserRegistered, ActorRef{ID: email, Type: "user"}, user.ID, map[string]any{
		"email": email,
	})

	return user, nil
}

// ValidLogin reports whether the email/password pair matches a stored
// credential. An unknown email is a normal false, not an error.
func (s *Auther) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	user, err := s.store.FindUserBy(ctx, UserFieldEmail, email)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := ComparePasswordAndHash(password, user.HashedPassword); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{ID: email, Type: "user"}, user.ID, map[string]any{
				"email": email,
			})
			return false, nil
		}
		return false, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, ActorRef{ID: email, Type: "user"}, user.ID, map[string]any{
		"email": email,
	})

	return true, nil
}

// CreateSession issues a fresh session identifier for the user and stores
// it, unconditionally replacing any prior one. An unknown email yields an
// empty identifier with no error.
func (s *Auther) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.store.FindUserBy(ctx, UserFieldEmail, email)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	sessionID := s.identifier()
	if err := s.store.UpdateUser(ctx, user.ID, UserChanges{SessionID: SetString(sessionID)}); err != nil {
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventSessionCreated, ActorRef{ID: email, Type: "user"}, user.ID, map[string]any{
		"email": email,
	})

	return sessionID, nil
}

// GetUserFromSessionID resolves a session identifier to its user. An empty
// identifier never touches the store; any lookup failure reads as "no
// session" rather than an error.
func (s *Auther) GetUserFromSessionID(ctx context.Context, sessionID string) (*User, error) {
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.store.FindUserBy(ctx, UserFieldSessionID, sessionID)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.Error("session lookup failed", "error", err)
		}
		return nil, nil
	}

	return user, nil
}

// DestroySession unconditionally clears the user's session identifier. It
// fails only when the store update fails, e.g. for an unknown user id.
func (s *Auther) DestroySession(ctx context.Context, userID int64) error {
	if err := s.store.UpdateUser(ctx, userID, UserChanges{SessionID: ClearString()}); err != nil {
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventSessionDestroyed, ActorRef{Type: "user"}, userID, nil)

	return nil
}

// GetResetPasswordToken issues a password reset token for the email. An
// empty email is a NotFound the caller sees as-is; an unknown email is
// re-signaled as a generic cannot-issue failure.
func (s *Auther) GetResetPasswordToken(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", recordNotFound(UserFieldEmail, email)
	}

	user, err := s.store.FindUserBy(ctx, UserFieldEmail, email)
	if err != nil {
		return "", goerrors.Wrap(ErrCannotIssueToken, goerrors.CategoryAuth, "reset token request failed").
			WithCode(goerrors.CodeForbidden).
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	token := s.identifier()
	if err := s.store.UpdateUser(ctx, user.ID, UserChanges{ResetToken: SetString(token)}); err != nil {
		return "", goerrors.Wrap(ErrCannotIssueToken, goerrors.CategoryAuth, "failed to store reset token").
			WithCode(goerrors.CodeForbidden).
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordResetRequest, ActorRef{ID: email, Type: "user"}, user.ID, map[string]any{
		"email": email,
	})

	return token, nil
}

// UpdatePassword redeems a reset token: the new password is hashed and
// stored, and the token cleared, in a single update. Any failure along the
// way is re-signaled as a generic cannot-update failure.
func (s *Auther) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.store.FindUserBy(ctx, UserFieldResetToken, resetToken)
	if err != nil {
		return goerrors.Wrap(ErrCannotUpdatePassword, goerrors.CategoryAuth, "unknown or expired reset token").
			WithCode(goerrors.CodeForbidden)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(ErrCannotUpdatePassword, goerrors.CategoryAuth, "invalid replacement password").
			WithCode(goerrors.CodeForbidden)
	}

	changes := UserChanges{
		HashedPassword: &hash,
		ResetToken:     ClearString(),
	}
	if err := s.store.UpdateUser(ctx, user.ID, changes); err != nil {
		return goerrors.Wrap(ErrCannotUpdatePassword, goerrors.CategoryAuth, "failed to store new password").
			WithCode(goerrors.CodeForbidden)
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordResetSuccess, ActorRef{ID: user.Email, Type: "user"}, user.ID, map[string]any{
		"email": user.Email,
	})

	return nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID int64, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Error("activity sink record error", "error", err)
	}
}
