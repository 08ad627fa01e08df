//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

// MockStore is a testify mock of the session store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSnapshot(ctx context.Context, data *storage.GameData, players []*storage.PlayerData) error {
	args := m.Called(ctx, data, players)
	return args.Error(0)
}

func (m *MockStore) LoadGame(ctx context.Context, id int) (*storage.GameData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.GameData), args.Error(1)
}

func (m *MockStore) DeleteGame(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) QuarantineGame(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListGameIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockStore) NextGameID(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) LoadPlayer(ctx context.Context, gameID, id int) (*storage.PlayerData, error) {
	args := m.Called(ctx, gameID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerData), args.Error(1)
}

func (m *MockStore) DeletePlayer(ctx context.Context, gameID, id int) error {
	args := m.Called(ctx, gameID, id)
	return args.Error(0)
}
