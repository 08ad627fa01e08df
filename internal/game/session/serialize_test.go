package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

func TestGameData_RoundTrip(t *testing.T) {
	t.Parallel()

	g := newStarted(t, 6, 41)
	current, err := g.CurrentPlayer()
	require.NoError(t, err)
	drawn, err := g.DrawCard(current)
	require.NoError(t, err)
	require.NoError(t, g.Discard(current, drawn))
	_, err = g.NextTurn()
	require.NoError(t, err)

	data, roster := g.ToGameData()
	require.NotNil(t, data.SecretRoleHolder)
	assert.Equal(t, holderOf(g), *data.SecretRoleHolder)
	assert.Len(t, roster, 6)

	restored, err := FromGameData(data, roster, fixtureCatalog())
	require.NoError(t, err)

	assert.Equal(t, g.Status(), restored.Status())
	assert.Equal(t, g.Host(), restored.Host())
	assert.Equal(t, g.TurnOrder(), restored.TurnOrder())
	assert.Equal(t, g.DiscardPile(), restored.DiscardPile())
	assert.Equal(t, g.DeckSize(), restored.DeckSize())
	assert.Equal(t, g.AssignedCards(), restored.AssignedCards())
	assert.Equal(t, holderOf(g), holderOf(restored))
	for _, id := range g.PlayerIDs() {
		want, err := g.Hand(id)
		require.NoError(t, err)
		got, err := restored.Hand(id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	top, err := g.PeekDeck()
	require.NoError(t, err)
	restoredTop, err := restored.PeekDeck()
	require.NoError(t, err)
	assert.Equal(t, top, restoredTop)
}

func TestGameData_WaitingHasNoSequences(t *testing.T) {
	t.Parallel()

	g := newWaiting(t, 2)
	data, roster := g.ToGameData()
	assert.Nil(t, data.Deck)
	assert.Nil(t, data.TurnOrder)
	assert.Nil(t, data.DiscardPile)
	assert.Nil(t, data.SecretRoleHolder)

	restored, err := FromGameData(data, roster, fixtureCatalog())
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, restored.Status())
	assert.Equal(t, 0, restored.DeckSize())
	assert.Equal(t, []int{1, 2}, restored.PlayerIDs())
}

func TestGameData_FinishedKeepsWinner(t *testing.T) {
	t.Parallel()

	g := newStarted(t, 4, 43)
	_, err := g.Eliminate(holderOf(g))
	require.NoError(t, err)

	data, roster := g.ToGameData()
	restored, err := FromGameData(data, roster, fixtureCatalog())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, restored.Status())
	assert.Equal(t, win.SideSurvivors, restored.Winner())
}

func TestFromGameData_Integrity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(data *storage.GameData, roster []*storage.PlayerData)
		want    error
	}{
		{
			name:    "started without deck",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.Deck = nil },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "started without turn order",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.TurnOrder = nil },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name: "card in a hand and the deck",
			corrupt: func(data *storage.GameData, roster []*storage.PlayerData) {
				data.Deck = append(data.Deck, roster[0].Hand[0])
			},
			want: apperrors.ErrStateIntegrity,
		},
		{
			name: "card in the discard pile and the deck",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) {
				data.DiscardPile = append(data.DiscardPile, data.Deck[0])
			},
			want: apperrors.ErrStateIntegrity,
		},
		{
			name:    "unassigned card",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.Deck = append(data.Deck, 400) },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name: "card missing from catalog",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) {
				data.AssignedCards = append(data.AssignedCards, 999)
			},
			want: apperrors.ErrStateIntegrity,
		},
		{
			name: "role holder not a player",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) {
				missing := 42
				data.SecretRoleHolder = &missing
			},
			want: apperrors.ErrRoleHolderNotFound,
		},
		{
			name:    "missing role holder",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.SecretRoleHolder = nil },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "host not a player",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.Host = 42 },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "unknown player in turn order",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.TurnOrder = append(data.TurnOrder, 42) },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "started with an empty turn order",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.TurnOrder = []int{} },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name: "dead player first in turn order",
			corrupt: func(data *storage.GameData, roster []*storage.PlayerData) {
				for _, p := range roster {
					if p.ID == data.TurnOrder[0] {
						p.Alive = false
					}
				}
			},
			want: apperrors.ErrStateIntegrity,
		},
		{
			name:    "alive player missing from turn order",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.TurnOrder = data.TurnOrder[1:] },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "unknown status",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.Status = 7 },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "roster entry from another game",
			corrupt: func(_ *storage.GameData, roster []*storage.PlayerData) { roster[1].GameID = 99 },
			want:    apperrors.ErrStateIntegrity,
		},
		{
			name:    "winner on a running game",
			corrupt: func(data *storage.GameData, _ []*storage.PlayerData) { data.Winner = int(win.SideImpostor) },
			want:    apperrors.ErrStateIntegrity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newStarted(t, 4, 47)
			data, roster := g.ToGameData()
			tt.corrupt(data, roster)

			_, err := FromGameData(data, roster, fixtureCatalog())
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, apperrors.IsFatal(err))
		})
	}
}

func TestFromGameData_MissingRosterEntry(t *testing.T) {
	t.Parallel()

	g := newStarted(t, 4, 53)
	data, roster := g.ToGameData()

	_, err := FromGameData(data, roster[:3], fixtureCatalog())
	assert.ErrorIs(t, err, apperrors.ErrStateIntegrity)

	_, err = FromGameData(nil, nil, fixtureCatalog())
	assert.ErrorIs(t, err, apperrors.ErrStateIntegrity)
}
