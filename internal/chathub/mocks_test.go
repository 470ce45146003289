package chathub

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"dchat/client/internal/models"
)

// mockConn is a controllable HubConn for manager tests.
type mockConn struct {
	mu        sync.Mutex
	state     ConnState
	calls     []invocation
	invokeErr error

	events chan HubEvent
	states chan ConnState
}

func newMockConn() *mockConn {
	return &mockConn{
		state:  StateConnected,
		events: make(chan HubEvent, 16),
		states: make(chan ConnState, 16),
	}
}

func (c *mockConn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *mockConn) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.states <- s
}

func (c *mockConn) Invoke(target string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var arg any
	if len(args) > 0 {
		arg = args[0]
	}
	c.calls = append(c.calls, invocation{target: target, arg: arg})
	return c.invokeErr
}

func (c *mockConn) invocations() []invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]invocation, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *mockConn) Events() <-chan HubEvent        { return c.events }
func (c *mockConn) StateChanges() <-chan ConnState { return c.states }

// MockLoader is a testify mock of the history loader.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) GetRoomMessages(_ context.Context, roomID string) (*models.MessageHistory, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageHistory), args.Error(1)
}

// stubIdentity names the local author in tests.
type stubIdentity struct {
	id   string
	name string
}

func (s stubIdentity) UserID() string   { return s.id }
func (s stubIdentity) UserName() string { return s.name }
