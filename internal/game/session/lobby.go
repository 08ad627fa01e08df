package session

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/deal"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/pile"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/turn"
)

// StartOption tweaks how Start deals the opening hands.
type StartOption func(*startConfig)

type startConfig struct {
	variant bool
	hook    deal.SubstitutionHook
}

// WithVariantDeal picks the role holder before dealing instead of letting the
// role card land at random. hook may be nil.
func WithVariantDeal(hook deal.SubstitutionHook) StartOption {
	return func(c *startConfig) {
		c.variant = true
		c.hook = hook
	}
}

// Join adds a player to a WAITING session.
func (s *GameSession) Join(p Player, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}
	if s.status != StatusWaiting {
		return apperrors.ErrGameStarted
	}
	if s.find(p.ID) != nil {
		return apperrors.ErrAlreadyInGame
	}
	if s.password != "" && s.password != password {
		return apperrors.ErrWrongPassword
	}
	if len(s.players) >= s.maxPlayers {
		return apperrors.ErrGameFull
	}

	p.Alive = true
	p.Infected = false
	p.Hand = nil
	s.players = append(s.players, &p)
	return nil
}

// Leave removes a player from a WAITING session. disband is true when the
// host left, in which case the session must be dropped.
func (s *GameSession) Leave(playerID int) (disband bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return false, apperrors.ErrGameStarted
	}
	idx := slices.IndexFunc(s.players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return false, apperrors.ErrNotInGame
	}

	s.players = slices.Delete(s.players, idx, idx+1)
	return playerID == s.host, nil
}

// Start deals the cards, fixes the secret role holder and builds the turn
// order. Nothing is committed unless every step succeeds.
func (s *GameSession) Start(hostID int, catalog []card.Card, rng *rand.Rand, opts ...StartOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}
	switch s.status {
	case StatusStarted:
		return apperrors.ErrGameStarted
	case StatusFinished:
		return apperrors.ErrGameFinished
	}
	if hostID != s.host {
		return apperrors.ErrNotHost
	}
	n := len(s.players)
	if n < s.minPlayers {
		return fmt.Errorf("%w: have %d, need %d", apperrors.ErrNotEnoughPlayers, n, s.minPlayers)
	}
	if n > s.maxPlayers {
		return fmt.Errorf("%w: have %d, max %d", apperrors.ErrGameFull, n, s.maxPlayers)
	}

	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	roster := s.playerIDs()
	assigned := deal.UnlockCards(catalog, n)

	var (
		res *deal.Result
		err error
	)
	if cfg.variant {
		res, err = deal.RandomDeal(assigned, roster, rng, cfg.hook)
	} else {
		res, err = deal.InitialDeal(assigned, roster, rng)
	}
	if err != nil {
		return err
	}

	order, err := turn.Build(roster, s.host, rng)
	if err != nil {
		return err
	}

	// commit
	for _, p := range s.players {
		p.Alive = true
		p.Infected = false
		p.Hand = res.Hands[p.ID]
	}
	holder := res.RoleHolder
	s.roleHolder = &holder
	s.assigned = assigned
	s.deck = pile.New(res.Deck...)
	s.discard = pile.New()
	s.turnOrder = order
	s.status = StatusStarted
	return nil
}

// Clean runs the end-of-game obligations: hands, cards, piles and turn order
// are cleared and the ids of the released players are returned. Only a
// FINISHED or abandoned WAITING session can be cleaned.
func (s *GameSession) Clean() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusStarted && s.broken == nil {
		return nil, apperrors.ErrGameStarted
	}

	for _, p := range s.players {
		p.Hand = nil
	}
	s.assigned = nil
	s.deck.Clear()
	s.discard.Clear()
	s.turnOrder = nil
	return s.playerIDs(), nil
}
