//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// MockServer is a testify mock of types.ServerInterface.
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) BroadcastToLobby(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockServer) GetClientByPlayerID(playerID int) types.ClientInterface {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.ClientInterface)
}

// SimpleServer routes messages to registered SimpleClients.
type SimpleServer struct {
	Maintenance bool

	mu      sync.RWMutex
	clients map[int]*SimpleClient
}

// NewSimpleServer returns a server that knows the given clients.
func NewSimpleServer(clients ...*SimpleClient) *SimpleServer {
	s := &SimpleServer{clients: make(map[int]*SimpleClient)}
	for _, c := range clients {
		s.clients[c.PlayerID] = c
	}
	return s
}

func (s *SimpleServer) IsMaintenanceMode() bool { return s.Maintenance }

func (s *SimpleServer) GetOnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SimpleServer) BroadcastToLobby(msg *protocol.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.GetGame() == 0 {
			c.SendMessage(msg)
		}
	}
}

func (s *SimpleServer) GetClientByPlayerID(playerID int) types.ClientInterface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[playerID]; ok {
		return c
	}
	return nil
}

// Remove forgets a client, as if it disconnected.
func (s *SimpleServer) Remove(playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, playerID)
}

// Add registers a client, replacing any with the same player id.
func (s *SimpleServer) Add(c *SimpleClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.PlayerID] = c
}
