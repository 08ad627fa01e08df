//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

// MockClient is a testify mock of types.ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetPlayerID() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetGame() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockClient) SetGame(gameID int) {
	m.Called(gameID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient records what it is sent. Use it when a test only inspects the
// messages.
type SimpleClient struct {
	ID       string
	PlayerID int
	Name     string
	GameID   int

	mu       sync.Mutex
	Messages []*protocol.Message
	Closed   bool
}

func (c *SimpleClient) GetID() string    { return c.ID }
func (c *SimpleClient) GetPlayerID() int { return c.PlayerID }
func (c *SimpleClient) GetName() string  { return c.Name }

func (c *SimpleClient) GetGame() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.GameID
}

func (c *SimpleClient) SetGame(gameID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GameID = gameID
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// copy, the sender may recycle msg
	c.Messages = append(c.Messages, &protocol.Message{
		Type:    msg.Type,
		Payload: append([]byte(nil), msg.Payload...),
	})
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
}

// Last returns the most recent message of type t, or nil.
func (c *SimpleClient) Last(t protocol.MessageType) *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Type == t {
			return c.Messages[i]
		}
	}
	return nil
}

// Types returns the types of every message received, in order.
func (c *SimpleClient) Types() []protocol.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.MessageType, 0, len(c.Messages))
	for _, m := range c.Messages {
		out = append(out, m.Type)
	}
	return out
}

// Reset forgets every recorded message.
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = nil
}
