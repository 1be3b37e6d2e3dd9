package auth_test

import (
	"context"

	auth "github.com/VloneMe/alx-backend-user-data"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) AddUser(ctx context.Context, email, hashedPassword string) (*auth.User, error) {
	args := m.Called(ctx, email, hashedPassword)
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

func (m *MockUserStore) FindUserBy(ctx context.Context, field auth.UserField, value any) (*auth.User, error) {
	args := m.Called(ctx, field, value)
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, id int64, changes auth.UserChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

// capturingSink collects the activity events an Auther emits.
type capturingSink struct {
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

// capturingLogger records log calls for redaction assertions.
type capturingLogger struct {
	messages []string
	args     [][]any
}

func (l *capturingLogger) record(format string, args []any) {
	l.messages = append(l.messages, format)
	l.args = append(l.args, args)
}

func (l *capturingLogger) Debug(format string, args ...any) { l.record(format, args) }
func (l *capturingLogger) Info(format string, args ...any)  { l.record(format, args) }
func (l *capturingLogger) Error(format string, args ...any) { l.record(format, args) }
