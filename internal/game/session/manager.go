package session

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/deal"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/logger"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

// Store is the persistence the manager writes through. *storage.RedisStore
// satisfies it.
type Store interface {
	SaveSnapshot(ctx context.Context, data *storage.GameData, players []*storage.PlayerData) error
	LoadGame(ctx context.Context, id int) (*storage.GameData, error)
	DeleteGame(ctx context.Context, id int) error
	QuarantineGame(ctx context.Context, id int) error
	ListGameIDs(ctx context.Context) ([]int, error)
	NextGameID(ctx context.Context) (int, error)
	LoadPlayer(ctx context.Context, gameID, id int) (*storage.PlayerData, error)
	DeletePlayer(ctx context.Context, gameID, id int) error
}

// Config holds the lobby rules the manager enforces.
type Config struct {
	MinPlayers     int
	MaxPlayers     int
	WaitingTimeout time.Duration
	// Substitution is passed to variant deals; nil disables it.
	Substitution deal.SubstitutionHook
}

// ExpiryHandler is told about a waiting game dropped by the cleanup loop.
type ExpiryHandler func(g *GameSession, released []int)

// Departure describes what happened when a player left.
type Departure struct {
	Game       *GameSession
	Disbanded  bool     // host left a waiting game
	Eliminated bool     // player left a running game and forfeited
	Winner     win.Side // set when the forfeit ended the game
	Released   []int    // players no longer bound to the game
}

// entry serializes every action on one session.
type entry struct {
	mu      sync.Mutex
	game    *GameSession
	removed bool
}

// Manager owns every live session.
type Manager struct {
	store    Store
	catalog  *card.Catalog
	cfg      Config
	newRand  func() *rand.Rand
	onExpire ExpiryHandler

	games    map[int]*entry
	byPlayer map[int]int // player id -> game id
	lastID   int         // id source when running without a store
	mu       sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager and starts its cleanup loop. store may be nil,
// in which case nothing is persisted.
func NewManager(store Store, catalog *card.Catalog, cfg Config) *Manager {
	m := &Manager{
		store:    store,
		catalog:  catalog,
		cfg:      cfg,
		newRand:  NewRand,
		games:    make(map[int]*entry),
		byPlayer: make(map[int]int),
		stop:     make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Close stops the cleanup loop.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// SetRandSource replaces the random source factory used by StartGame.
func (m *Manager) SetRandSource(fn func() *rand.Rand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newRand = fn
}

// SetExpiryHandler registers the callback run for each expired waiting game.
func (m *Manager) SetExpiryHandler(fn ExpiryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// --- lobby ---

// CreateGame opens a WAITING game hosted by host. Zero bounds take the
// configured defaults.
func (m *Manager) CreateGame(ctx context.Context, host Player, name, password string, minPlayers, maxPlayers int) (*GameSession, error) {
	if minPlayers == 0 {
		minPlayers = m.cfg.MinPlayers
	}
	if maxPlayers == 0 {
		maxPlayers = m.cfg.MaxPlayers
	}
	if minPlayers < m.cfg.MinPlayers || maxPlayers > m.cfg.MaxPlayers || minPlayers > maxPlayers {
		return nil, fmt.Errorf("%w: players must be within %d..%d",
			apperrors.ErrInvalidRoster, m.cfg.MinPlayers, m.cfg.MaxPlayers)
	}

	id, err := m.allocateID(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("game-%d", id)
	}

	m.mu.Lock()
	if _, busy := m.byPlayer[host.ID]; busy {
		m.mu.Unlock()
		return nil, apperrors.ErrAlreadyInGame
	}
	for _, e := range m.games {
		if e.game.Name == name {
			m.mu.Unlock()
			return nil, apperrors.ErrNameTaken
		}
	}
	g, err := New(id, name, password, host, minPlayers, maxPlayers)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.games[id] = &entry{game: g}
	m.byPlayer[host.ID] = id
	m.mu.Unlock()

	m.persist(ctx, g)

	log.Printf("🏠 game %d (%s) created by player %d", id, name, host.ID)

	return g, nil
}

// JoinGame adds p to a WAITING game.
func (m *Manager) JoinGame(ctx context.Context, p Player, gameID int, password string) (*GameSession, error) {
	m.mu.RLock()
	_, busy := m.byPlayer[p.ID]
	e, exists := m.games[gameID]
	m.mu.RUnlock()
	if busy {
		return nil, apperrors.ErrAlreadyInGame
	}
	if !exists {
		return nil, apperrors.ErrGameNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, apperrors.ErrGameNotFound
	}

	m.mu.Lock()
	if _, busy := m.byPlayer[p.ID]; busy {
		m.mu.Unlock()
		return nil, apperrors.ErrAlreadyInGame
	}
	if err := e.game.Join(p, password); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.byPlayer[p.ID] = gameID
	m.mu.Unlock()

	m.persist(ctx, e.game)

	log.Printf("👤 player %d joined game %d", p.ID, gameID)

	return e.game, nil
}

// LeaveGame takes a player out of their game. Leaving a running game is a
// forfeit: the player is eliminated and the win checks run.
func (m *Manager) LeaveGame(ctx context.Context, playerID int) (*Departure, error) {
	e, err := m.lookup(playerID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, apperrors.ErrNotInGame
	}
	g := e.game
	dep := &Departure{Game: g}

	switch {
	case g.Broken() != nil:
		m.release(playerID)
		dep.Released = []int{playerID}
		return dep, nil

	case g.Status() == StatusWaiting:
		disband, err := g.Leave(playerID)
		if err != nil {
			return nil, err
		}
		m.release(playerID)
		m.deletePlayer(ctx, g.ID, playerID)
		if disband {
			dep.Disbanded = true
			dep.Released = append(m.drop(ctx, e), playerID)
			log.Printf("🏠 game %d disbanded, host %d left", g.ID, playerID)
			return dep, nil
		}
		dep.Released = []int{playerID}
		m.persist(ctx, g)
		log.Printf("👋 player %d left game %d", playerID, g.ID)
		return dep, nil

	case !g.IsAlive(playerID):
		// already eliminated, nothing left to forfeit
		m.release(playerID)
		dep.Released = []int{playerID}
		log.Printf("👋 eliminated player %d left game %d", playerID, g.ID)
		return dep, nil

	default:
		side, err := g.Eliminate(playerID)
		if err != nil {
			m.reportFatal(g, err)
			return nil, err
		}
		dep.Eliminated = true
		dep.Winner = side
		log.Printf("👋 player %d forfeited game %d", playerID, g.ID)
		if side != win.SideNone {
			dep.Released = m.finish(ctx, e)
			return dep, nil
		}
		m.release(playerID)
		dep.Released = []int{playerID}
		m.persist(ctx, g)
		return dep, nil
	}
}

// StartGame deals and starts the caller's game. Only the host can start it.
func (m *Manager) StartGame(ctx context.Context, playerID int, variant bool) (*GameSession, error) {
	e, err := m.lookup(playerID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, apperrors.ErrNotInGame
	}

	m.mu.RLock()
	rng := m.newRand()
	m.mu.RUnlock()

	var opts []StartOption
	if variant {
		opts = append(opts, WithVariantDeal(m.cfg.Substitution))
	}
	if err := e.game.Start(playerID, m.catalogOrEmpty().Cards(), rng, opts...); err != nil {
		return nil, err
	}

	m.persist(ctx, e.game)

	log.Printf("🎮 game %d started with %d players", e.game.ID, e.game.PlayerCount())

	return e.game, nil
}

// --- play ---

// DrawCard draws the top card of the deck into the active player's hand.
func (m *Manager) DrawCard(ctx context.Context, playerID int) (*GameSession, card.ID, error) {
	var drawn card.ID
	g, err := m.act(ctx, playerID, func(g *GameSession) error {
		id, err := g.DrawCard(playerID)
		drawn = id
		return err
	})
	return g, drawn, err
}

// DiscardCard moves a card from the active player's hand to the discard pile.
func (m *Manager) DiscardCard(ctx context.Context, playerID int, cardID card.ID) (*GameSession, error) {
	return m.act(ctx, playerID, func(g *GameSession) error {
		return g.Discard(playerID, cardID)
	})
}

// ReturnToDeck puts a card from the active player's hand under the deck.
func (m *Manager) ReturnToDeck(ctx context.Context, playerID int, cardID card.ID) (*GameSession, error) {
	return m.act(ctx, playerID, func(g *GameSession) error {
		return g.ReturnToDeck(playerID, cardID)
	})
}

// EndTurn passes the turn and returns the next active player.
func (m *Manager) EndTurn(ctx context.Context, playerID int) (*GameSession, int, error) {
	var next int
	g, err := m.act(ctx, playerID, func(g *GameSession) error {
		if !g.CheckTurn(playerID) {
			return apperrors.ErrNotYourTurn
		}
		n, err := g.NextTurn()
		next = n
		return err
	})
	return g, next, err
}

// Outcome is the result of an action that can end the game.
type Outcome struct {
	Game     *GameSession
	Winner   win.Side
	Released []int // set when the game finished
}

// EliminatePlayer lets the active player eliminate target.
func (m *Manager) EliminatePlayer(ctx context.Context, actorID, targetID int) (*Outcome, error) {
	return m.resolve(ctx, actorID, func(g *GameSession) (win.Side, error) {
		if !g.CheckTurn(actorID) {
			return win.SideNone, apperrors.ErrNotYourTurn
		}
		return g.Eliminate(targetID)
	})
}

// InfectPlayer lets the role holder infect target on their turn.
func (m *Manager) InfectPlayer(ctx context.Context, actorID, targetID int) (*Outcome, error) {
	return m.resolve(ctx, actorID, func(g *GameSession) (win.Side, error) {
		if !g.CheckTurn(actorID) {
			return win.SideNone, apperrors.ErrNotYourTurn
		}
		return g.Infect(actorID, targetID)
	})
}

// act runs fn under the game's action lock and persists on success.
func (m *Manager) act(ctx context.Context, playerID int, fn func(g *GameSession) error) (*GameSession, error) {
	e, err := m.lookup(playerID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, apperrors.ErrNotInGame
	}
	if err := fn(e.game); err != nil {
		m.reportFatal(e.game, err)
		return e.game, err
	}
	m.persist(ctx, e.game)
	return e.game, nil
}

// resolve is act for actions that may finish the game.
func (m *Manager) resolve(ctx context.Context, playerID int, fn func(g *GameSession) (win.Side, error)) (*Outcome, error) {
	e, err := m.lookup(playerID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, apperrors.ErrNotInGame
	}
	side, err := fn(e.game)
	if err != nil {
		m.reportFatal(e.game, err)
		return nil, err
	}

	out := &Outcome{Game: e.game, Winner: side}
	if side != win.SideNone {
		out.Released = m.finish(ctx, e)
		return out, nil
	}
	m.persist(ctx, e.game)
	return out, nil
}

// --- queries ---

// GetGame returns a live game by id.
func (m *Manager) GetGame(id int) *GameSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.game
	}
	return nil
}

// GameOf returns the game a player is in.
func (m *Manager) GameOf(playerID int) *GameSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byPlayer[playerID]; ok {
		if e, ok := m.games[id]; ok {
			return e.game
		}
	}
	return nil
}

// ListGames returns the games that can still be joined, ordered by id.
func (m *Manager) ListGames() []protocol.GameListItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := make([]protocol.GameListItem, 0, len(m.games))
	for id, e := range m.games {
		g := e.game
		if g.Status() != StatusWaiting {
			continue
		}
		count := g.PlayerCount()
		minPlayers, maxPlayers := g.Bounds()
		if count >= maxPlayers {
			continue
		}
		games = append(games, protocol.GameListItem{
			GameID:      id,
			Name:        g.Name,
			PlayerCount: count,
			MinPlayers:  minPlayers,
			MaxPlayers:  maxPlayers,
			HasPassword: g.HasPassword(),
		})
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })
	return games
}

// Seated returns every player bound to a waiting or running game, ordered by
// id. Eliminated players of a running game are not bound.
func (m *Manager) Seated() []PlayerInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []PlayerInfo
	for _, e := range m.games {
		for _, p := range e.game.Players() {
			if m.byPlayer[p.ID] == e.game.ID {
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveGamesCount returns the number of games being played.
func (m *Manager) ActiveGamesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.games {
		if e.game.Status() == StatusStarted {
			count++
		}
	}
	return count
}

// --- helpers ---

func (m *Manager) lookup(playerID int) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil, apperrors.ErrNotInGame
	}
	e, ok := m.games[id]
	if !ok {
		return nil, apperrors.ErrGameNotFound
	}
	return e, nil
}

func (m *Manager) allocateID(ctx context.Context) (int, error) {
	if m.store != nil {
		return m.store.NextGameID(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	return m.lastID, nil
}

func (m *Manager) release(playerID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byPlayer, playerID)
}

// finish cleans a finished game and drops it. Caller holds e.mu.
func (m *Manager) finish(ctx context.Context, e *entry) []int {
	g := e.game
	holder, _ := g.Reveal()
	log.Printf("🏁 game %d finished, %s win (role holder %d)", g.ID, g.Winner(), holder)
	return m.drop(ctx, e)
}

// drop removes a game from the manager and from storage. Caller holds e.mu.
func (m *Manager) drop(ctx context.Context, e *entry) []int {
	g := e.game
	released, err := g.Clean()
	if err != nil {
		released = g.PlayerIDs()
	}
	e.removed = true

	m.mu.Lock()
	delete(m.games, g.ID)
	for _, id := range released {
		if m.byPlayer[id] == g.ID {
			delete(m.byPlayer, id)
		}
	}
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.DeleteGame(ctx, g.ID); err != nil {
			log.Printf("⚠️ failed to delete game %d: %v", g.ID, err)
		}
		for _, id := range released {
			m.deletePlayer(ctx, g.ID, id)
		}
	}
	return released
}

func (m *Manager) persist(ctx context.Context, g *GameSession) {
	if m.store == nil {
		return
	}
	data, players := g.ToGameData()
	if err := m.store.SaveSnapshot(ctx, data, players); err != nil {
		log.Printf("⚠️ failed to save game %d: %v", g.ID, err)
	}
}

func (m *Manager) deletePlayer(ctx context.Context, gameID, id int) {
	if m.store == nil {
		return
	}
	if err := m.store.DeletePlayer(ctx, gameID, id); err != nil {
		log.Printf("⚠️ failed to delete player %d: %v", id, err)
	}
}

func (m *Manager) reportFatal(g *GameSession, err error) {
	if apperrors.IsFatal(err) {
		logger.LogError("🚨 game %d is broken: %v", g.ID, err)
	}
}
