// Package pile holds the draw pile and the discard pile of a session.
package pile

import (
	"slices"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

// Pile is an ordered sequence of card references. The front is the next card
// to draw; Push appends to the back.
type Pile struct {
	cards []card.ID
}

// New returns a pile holding ids in order.
func New(ids ...card.ID) *Pile {
	return &Pile{cards: slices.Clone(ids)}
}

// Peek returns the front card without removing it.
func (p *Pile) Peek() (card.ID, error) {
	if len(p.cards) == 0 {
		return 0, apperrors.ErrEmptyDeck
	}
	return p.cards[0], nil
}

// Draw removes and returns the front card.
func (p *Pile) Draw() (card.ID, error) {
	if len(p.cards) == 0 {
		return 0, apperrors.ErrEmptyDeck
	}
	id := p.cards[0]
	p.cards = p.cards[1:]
	return id, nil
}

// Push appends id to the back.
func (p *Pile) Push(id card.ID) {
	p.cards = append(p.cards, id)
}

// Top returns the most recently pushed card.
func (p *Pile) Top() (card.ID, bool) {
	if len(p.cards) == 0 {
		return 0, false
	}
	return p.cards[len(p.cards)-1], true
}

// Len returns the number of cards.
func (p *Pile) Len() int {
	return len(p.cards)
}

// Contains reports whether id is in the pile.
func (p *Pile) Contains(id card.ID) bool {
	return slices.Contains(p.cards, id)
}

// IDs returns a copy of the pile, front first. It is never nil.
func (p *Pile) IDs() []card.ID {
	out := make([]card.ID, len(p.cards))
	copy(out, p.cards)
	return out
}

// Clear empties the pile.
func (p *Pile) Clear() {
	p.cards = nil
}
