package session

import (
	"fmt"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/pile"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

// ToGameData snapshots the session and its roster for storage.
func (s *GameSession) ToGameData() (*storage.GameData, []*storage.PlayerData) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &storage.GameData{
		ID:            s.ID,
		Name:          s.Name,
		Password:      s.password,
		Status:        int(s.status),
		Host:          s.host,
		Winner:        int(s.winner),
		Players:       s.playerIDs(),
		AssignedCards: toInts(card.IDs(s.assigned)),
		MinPlayers:    s.minPlayers,
		MaxPlayers:    s.maxPlayers,
		CreatedAt:     s.CreatedAt.Unix(),
	}
	if s.roleHolder != nil {
		holder := *s.roleHolder
		data.SecretRoleHolder = &holder
	}
	// a waiting session has not dealt yet; its sequences stay absent
	if s.status != StatusWaiting {
		data.TurnOrder = append([]int{}, s.turnOrder...)
		data.Deck = toInts(s.deck.IDs())
		data.DiscardPile = toInts(s.discard.IDs())
	}

	players := make([]*storage.PlayerData, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, &storage.PlayerData{
			ID:       p.ID,
			Name:     p.Name,
			GameID:   s.ID,
			Alive:    p.Alive,
			Infected: p.Infected,
			Hand:     toInts(p.Hand),
		})
	}
	return data, players
}

// FromGameData rebuilds a session from a snapshot. Any inconsistency between
// the snapshot, its roster and the catalog is a state integrity error.
func FromGameData(data *storage.GameData, roster []*storage.PlayerData, catalog *card.Catalog) (*GameSession, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no game data", apperrors.ErrStateIntegrity)
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: game %d: %s", apperrors.ErrStateIntegrity, data.ID, fmt.Sprintf(format, args...))
	}

	status := Status(data.Status)
	if status < StatusWaiting || status > StatusFinished {
		return nil, fail("unknown status %d", data.Status)
	}
	if data.MinPlayers < 1 || data.MaxPlayers < data.MinPlayers {
		return nil, fail("player bounds %d..%d", data.MinPlayers, data.MaxPlayers)
	}
	if len(data.Players) == 0 {
		return nil, fail("no players")
	}

	byID := make(map[int]*storage.PlayerData, len(roster))
	for _, p := range roster {
		if p != nil {
			byID[p.ID] = p
		}
	}

	s := &GameSession{
		ID:         data.ID,
		Name:       data.Name,
		CreatedAt:  time.Unix(data.CreatedAt, 0),
		password:   data.Password,
		status:     status,
		host:       data.Host,
		winner:     win.Side(data.Winner),
		minPlayers: data.MinPlayers,
		maxPlayers: data.MaxPlayers,
	}

	for _, id := range data.Players {
		if s.find(id) != nil {
			return nil, fail("player %d listed twice", id)
		}
		pd, ok := byID[id]
		if !ok {
			return nil, fail("player %d has no roster entry", id)
		}
		if pd.GameID != data.ID {
			return nil, fail("player %d belongs to game %d", id, pd.GameID)
		}
		s.players = append(s.players, &Player{
			ID:       pd.ID,
			Name:     pd.Name,
			Alive:    pd.Alive,
			Infected: pd.Infected,
			Hand:     toCardIDs(pd.Hand),
		})
	}
	if s.find(data.Host) == nil {
		return nil, fail("host %d is not a player", data.Host)
	}

	if status == StatusWaiting {
		if data.SecretRoleHolder != nil || len(data.AssignedCards) > 0 {
			return nil, fail("waiting game already dealt")
		}
		s.deck = pile.New()
		s.discard = pile.New()
		return s, nil
	}

	if data.SecretRoleHolder == nil {
		return nil, fail("missing role holder")
	}
	if s.find(*data.SecretRoleHolder) == nil {
		return nil, fmt.Errorf("%w: game %d: player %d", apperrors.ErrRoleHolderNotFound, data.ID, *data.SecretRoleHolder)
	}
	holder := *data.SecretRoleHolder
	s.roleHolder = &holder

	if data.TurnOrder == nil || data.Deck == nil || data.DiscardPile == nil {
		return nil, fail("missing turn order, deck or discard pile")
	}
	if status == StatusFinished && s.winner == win.SideNone {
		return nil, fail("finished without a winner")
	}
	if status == StatusStarted && s.winner != win.SideNone {
		return nil, fail("winner recorded on a running game")
	}

	// cards
	assigned := make(map[card.ID]struct{}, len(data.AssignedCards))
	for _, raw := range data.AssignedCards {
		id := card.ID(raw)
		def, ok := catalog.Get(id)
		if !ok {
			return nil, fail("card %d is not in the catalog", raw)
		}
		if _, dup := assigned[id]; dup {
			return nil, fail("card %d assigned twice", raw)
		}
		assigned[id] = struct{}{}
		s.assigned = append(s.assigned, def)
	}

	located := make(map[card.ID]string, len(assigned))
	place := func(ids []int, where string) error {
		for _, raw := range ids {
			id := card.ID(raw)
			if _, ok := assigned[id]; !ok {
				return fail("card %d in %s is not assigned to the game", raw, where)
			}
			if prev, dup := located[id]; dup {
				return fail("card %d is in both %s and %s", raw, prev, where)
			}
			located[id] = where
		}
		return nil
	}
	for _, p := range s.players {
		if err := place(toInts(p.Hand), fmt.Sprintf("hand of %d", p.ID)); err != nil {
			return nil, err
		}
	}
	if err := place(data.Deck, "deck"); err != nil {
		return nil, err
	}
	if err := place(data.DiscardPile, "discard pile"); err != nil {
		return nil, err
	}
	s.deck = pile.New(toCardIDs(data.Deck)...)
	s.discard = pile.New(toCardIDs(data.DiscardPile)...)

	// turn order
	seen := make(map[int]struct{}, len(data.TurnOrder))
	for _, id := range data.TurnOrder {
		if _, dup := seen[id]; dup {
			return nil, fail("player %d twice in turn order", id)
		}
		seen[id] = struct{}{}
		if s.find(id) == nil {
			return nil, fail("turn order names unknown player %d", id)
		}
	}
	// a running game's turn order is exactly its alive players
	if status == StatusStarted {
		if len(data.TurnOrder) == 0 {
			return nil, fail("empty turn order")
		}
		for _, p := range s.players {
			if _, in := seen[p.ID]; in != p.Alive {
				return nil, fail("turn order does not match alive player %d (alive=%t)", p.ID, p.Alive)
			}
		}
	}
	s.turnOrder = append([]int{}, data.TurnOrder...)

	return s, nil
}

func toInts(ids []card.ID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func toCardIDs(ids []int) []card.ID {
	if ids == nil {
		return nil
	}
	out := make([]card.ID, len(ids))
	for i, id := range ids {
		out[i] = card.ID(id)
	}
	return out
}
