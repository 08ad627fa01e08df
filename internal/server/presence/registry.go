// Package presence keeps a player's seat while their connection is down, so
// they can reconnect to a running game with the token they were given.
package presence

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Seat is a snapshot of one player's presence.
type Seat struct {
	PlayerID       int
	Name           string
	Token          string
	Online         bool
	DisconnectedAt time.Time
}

// Registry tracks seats by player id and by reconnect token.
type Registry struct {
	grace time.Duration
	now   func() time.Time

	mu     sync.Mutex
	seats  map[int]*Seat
	tokens map[string]int // token -> player id
}

// NewRegistry creates a registry that holds an offline seat for grace.
func NewRegistry(grace time.Duration) *Registry {
	return &Registry{
		grace:  grace,
		now:    time.Now,
		seats:  make(map[int]*Seat),
		tokens: make(map[string]int),
	}
}

// Register gives a newly connected player a seat and a fresh token.
func (r *Registry) Register(playerID int, name string) Seat {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.seats[playerID]; ok {
		delete(r.tokens, old.Token)
	}
	seat := &Seat{
		PlayerID: playerID,
		Name:     name,
		Token:    generateToken(),
		Online:   true,
	}
	r.seats[playerID] = seat
	r.tokens[seat.Token] = playerID
	return *seat
}

// Reclaim marks the seat behind token online again. It fails for unknown
// tokens and for seats offline longer than the grace period.
func (r *Registry) Reclaim(token string) (Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	playerID, ok := r.tokens[token]
	if !ok {
		return Seat{}, false
	}
	seat := r.seats[playerID]
	if !seat.Online && r.now().Sub(seat.DisconnectedAt) > r.grace {
		return Seat{}, false
	}
	seat.Online = true
	seat.DisconnectedAt = time.Time{}
	return *seat, true
}

// Hold gives a player a seat that starts offline, without a token. It is how
// players of a game restored from storage get their grace period.
func (r *Registry) Hold(playerID int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seats[playerID]; ok {
		return
	}
	r.seats[playerID] = &Seat{
		PlayerID:       playerID,
		Name:           name,
		DisconnectedAt: r.now(),
	}
}

// Adopt binds token to the held seat of a player and marks it online. It
// fails when the player has no seat, is online, or the grace period is over.
func (r *Registry) Adopt(playerID int, token string) (Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[playerID]
	if !ok || seat.Online || r.now().Sub(seat.DisconnectedAt) > r.grace {
		return Seat{}, false
	}
	if seat.Token != "" {
		delete(r.tokens, seat.Token)
	}
	seat.Token = token
	seat.Online = true
	seat.DisconnectedAt = time.Time{}
	r.tokens[token] = playerID
	return *seat, true
}

// SetOffline starts the grace period of a seat.
func (r *Registry) SetOffline(playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat, ok := r.seats[playerID]; ok {
		seat.Online = false
		seat.DisconnectedAt = r.now()
	}
}

// SetOnline ends the grace period of a seat.
func (r *Registry) SetOnline(playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat, ok := r.seats[playerID]; ok {
		seat.Online = true
		seat.DisconnectedAt = time.Time{}
	}
}

// Remove forgets a seat and invalidates its token.
func (r *Registry) Remove(playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat, ok := r.seats[playerID]; ok {
		if seat.Token != "" {
			delete(r.tokens, seat.Token)
		}
		delete(r.seats, playerID)
	}
}

// Get returns the seat of a player.
func (r *Registry) Get(playerID int) (Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[playerID]
	if !ok {
		return Seat{}, false
	}
	return *seat, true
}

// Expired removes and returns the seats offline past the grace period at now.
func (r *Registry) Expired(now time.Time) []Seat {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Seat
	for playerID, seat := range r.seats {
		if !seat.Online && now.Sub(seat.DisconnectedAt) > r.grace {
			out = append(out, *seat)
			delete(r.tokens, seat.Token)
			delete(r.seats, playerID)
		}
	}
	return out
}

// Len returns the number of seats, online or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
