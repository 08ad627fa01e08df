package session

import (
	"fmt"
	"slices"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/turn"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
)

// Turn order policy: Rotate never looks at who is alive. Eliminate filters the
// dead player out of the order right away, so when the active player is
// eliminated the next player in line becomes active in place. NextTurn filters
// again after rotating so that an order restored from storage can never hand
// the turn to a dead player.

// CurrentPlayer returns the player whose turn it is.
func (s *GameSession) CurrentPlayer() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return turn.Current(s.turnOrder)
}

// CheckTurn reports whether it is playerID's turn.
func (s *GameSession) CheckTurn(playerID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusStarted && turn.IsTurn(s.turnOrder, playerID)
}

// NextTurn ends the active player's turn and returns the new active player.
func (s *GameSession) NextTurn() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	order, err := turn.Rotate(s.turnOrder)
	if err != nil {
		return 0, err
	}
	order = turn.FilterAlive(order, s.isAlive)
	next, err := turn.Current(order)
	if err != nil {
		return 0, err
	}
	s.turnOrder = order
	return next, nil
}

// RefreshTurnOrder drops eliminated players from the turn order, keeping the
// relative order of the rest.
func (s *GameSession) RefreshTurnOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStarted(); err != nil {
		return err
	}
	s.turnOrder = turn.FilterAlive(s.turnOrder, s.isAlive)
	return nil
}

// PeekDeck returns the next card to draw without drawing it.
func (s *GameSession) PeekDeck() (card.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	return s.deck.Peek()
}

// DrawCard moves the top of the deck into the active player's hand.
func (s *GameSession) DrawCard(playerID int) (card.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(playerID)
	if err != nil {
		return 0, err
	}
	id, err := s.deck.Draw()
	if err != nil {
		return 0, err
	}
	p.Hand = append(p.Hand, id)
	return id, nil
}

// Discard moves a card from the active player's hand to the discard pile.
func (s *GameSession) Discard(playerID int, cardID card.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(playerID)
	if err != nil {
		return err
	}
	idx := slices.Index(p.Hand, cardID)
	if idx < 0 {
		return fmt.Errorf("%w: card %d", apperrors.ErrCardNotInHand, cardID)
	}
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	s.discard.Push(cardID)
	return nil
}

// ReturnToDeck moves a card from the active player's hand to the bottom of
// the deck.
func (s *GameSession) ReturnToDeck(playerID int, cardID card.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(playerID)
	if err != nil {
		return err
	}
	idx := slices.Index(p.Hand, cardID)
	if idx < 0 {
		return fmt.Errorf("%w: card %d", apperrors.ErrCardNotInHand, cardID)
	}
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	s.deck.Push(cardID)
	return nil
}

// Eliminate marks a player dead, sends their hand to the discard pile, drops
// them from the turn order and runs the win checks. The returned side is
// win.SideNone while the game goes on.
func (s *GameSession) Eliminate(playerID int) (win.Side, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.livePlayer(playerID)
	if err != nil {
		return win.SideNone, err
	}

	p.Alive = false
	for _, id := range p.Hand {
		s.discard.Push(id)
	}
	p.Hand = nil
	s.turnOrder = turn.FilterAlive(s.turnOrder, s.isAlive)

	return s.evaluate()
}

// Infect aligns target with the role holder and runs the win checks. Only
// the role holder can infect, and never themselves.
func (s *GameSession) Infect(byID, targetID int) (win.Side, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.livePlayer(byID); err != nil {
		return win.SideNone, err
	}
	if s.roleHolder == nil || *s.roleHolder != byID {
		return win.SideNone, apperrors.ErrNotRoleHolder
	}
	target, err := s.livePlayer(targetID)
	if err != nil {
		return win.SideNone, err
	}
	if targetID == byID {
		return win.SideNone, fmt.Errorf("%w: cannot infect yourself", apperrors.ErrInvalidRoster)
	}

	target.Infected = true
	return s.evaluate()
}

// livePlayer resolves an alive player of a started session.
func (s *GameSession) livePlayer(playerID int) (*Player, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	p := s.find(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrPlayerNotFound, playerID)
	}
	if !p.Alive {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrPlayerDead, playerID)
	}
	return p, nil
}

// activePlayer resolves the player whose turn it is.
func (s *GameSession) activePlayer(playerID int) (*Player, error) {
	p, err := s.livePlayer(playerID)
	if err != nil {
		return nil, err
	}
	if !turn.IsTurn(s.turnOrder, playerID) {
		return nil, apperrors.ErrNotYourTurn
	}
	return p, nil
}
