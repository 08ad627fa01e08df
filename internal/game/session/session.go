// Package session holds the game-session aggregate and the manager that owns
// every live session.
//
// A GameSession is the only place where turn order, card locations, the
// secret role holder and the game status change. Each exported method is one
// logical step: it validates first and mutates only when every check passed.
package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/pile"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
)

// Status is the lifecycle stage of a session. It only moves forward.
type Status int

const (
	StatusWaiting Status = iota
	StatusStarted
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusStarted:
		return "started"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Player is a roster entry as the session sees it.
type Player struct {
	ID       int
	Name     string
	Alive    bool
	Infected bool
	Hand     []card.ID
}

// PlayerInfo is the public view of a roster entry. It never carries the hand.
type PlayerInfo struct {
	ID        int
	Name      string
	Alive     bool
	Infected  bool
	HandCount int
}

// GameSession is the aggregate root of one game.
type GameSession struct {
	ID        int
	Name      string
	CreatedAt time.Time

	password   string
	status     Status
	host       int
	roleHolder *int
	winner     win.Side
	players    []*Player // join order
	assigned   []card.Card
	turnOrder  []int
	deck       *pile.Pile
	discard    *pile.Pile
	minPlayers int
	maxPlayers int

	// broken is set once an integrity error is seen; every later mutation fails.
	broken error

	mu sync.RWMutex
}

// New creates a WAITING session with host as its only player.
func New(id int, name, password string, host Player, minPlayers, maxPlayers int) (*GameSession, error) {
	if minPlayers < 1 || maxPlayers < minPlayers {
		return nil, fmt.Errorf("%w: player bounds %d..%d", apperrors.ErrInvalidRoster, minPlayers, maxPlayers)
	}

	host.Alive = true
	host.Infected = false
	host.Hand = nil

	return &GameSession{
		ID:         id,
		Name:       name,
		CreatedAt:  time.Now(),
		password:   password,
		status:     StatusWaiting,
		host:       host.ID,
		players:    []*Player{&host},
		deck:       pile.New(),
		discard:    pile.New(),
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
	}, nil
}

// --- read accessors ---

// Status returns the lifecycle stage.
func (s *GameSession) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Host returns the host's player id.
func (s *GameSession) Host() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// HasPassword reports whether joining requires a password.
func (s *GameSession) HasPassword() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password != ""
}

// Bounds returns the minimum and maximum player counts.
func (s *GameSession) Bounds() (minPlayers, maxPlayers int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minPlayers, s.maxPlayers
}

// PlayerCount returns the number of players in the session, alive or not.
func (s *GameSession) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Players returns the public roster in join order.
func (s *GameSession) Players() []PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			Alive:     p.Alive,
			Infected:  p.Infected,
			HandCount: len(p.Hand),
		})
	}
	return out
}

// PlayerIDs returns the ids of every player in join order.
func (s *GameSession) PlayerIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerIDs()
}

// HasPlayer reports whether id is in the session.
func (s *GameSession) HasPlayer(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id) != nil
}

// IsAlive reports whether id is in the session and not eliminated.
func (s *GameSession) IsAlive(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAlive(id)
}

// Hand returns a copy of a player's hand. Only the owner should be shown it.
func (s *GameSession) Hand(playerID int) ([]card.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.find(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrPlayerNotFound, playerID)
	}
	return slices.Clone(p.Hand), nil
}

// TurnOrder returns a copy of the current turn order.
func (s *GameSession) TurnOrder() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.turnOrder)
}

// DeckSize returns the number of cards left to draw.
func (s *GameSession) DeckSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck.Len()
}

// DiscardPile returns the discard pile, oldest first.
func (s *GameSession) DiscardPile() []card.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discard.IDs()
}

// AssignedCards returns the cards unlocked for this session.
func (s *GameSession) AssignedCards() []card.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.assigned)
}

// Winner returns the winning side, or win.SideNone while the game runs.
func (s *GameSession) Winner() win.Side {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winner
}

// Reveal returns the secret role holder once the game is finished.
// While the game runs the holder stays hidden and ok is false.
func (s *GameSession) Reveal() (holder int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusFinished || s.roleHolder == nil {
		return 0, false
	}
	return *s.roleHolder, true
}

// Broken returns the integrity error that disabled the session, if any.
func (s *GameSession) Broken() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.broken
}

// --- internal helpers, caller holds s.mu ---

func (s *GameSession) find(id int) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *GameSession) playerIDs() []int {
	ids := make([]int, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *GameSession) aliveIDs() []int {
	ids := make([]int, 0, len(s.players))
	for _, p := range s.players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (s *GameSession) isAlive(id int) bool {
	p := s.find(id)
	return p != nil && p.Alive
}

// usable fails once the session has been marked broken.
func (s *GameSession) usable() error {
	if s.broken != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSessionBroken, s.broken)
	}
	return nil
}

// requireStarted is the common guard for in-game operations.
func (s *GameSession) requireStarted() error {
	if err := s.usable(); err != nil {
		return err
	}
	switch s.status {
	case StatusWaiting:
		return apperrors.ErrGameNotStarted
	case StatusFinished:
		return apperrors.ErrGameFinished
	}
	return nil
}

// markBroken records a fatal error and returns it unchanged.
func (s *GameSession) markBroken(err error) error {
	if apperrors.IsFatal(err) && s.broken == nil {
		s.broken = err
	}
	return err
}
