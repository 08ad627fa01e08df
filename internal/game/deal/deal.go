// Package deal computes the opening distribution of a session: which catalog
// cards are in play, the four-card opening hands, the secret role holder and
// the remaining draw pile.
//
// All functions are pure. They read their inputs, draw from the supplied
// random source, and return fresh slices; the session commits the result.
package deal

import (
	"fmt"
	"math/rand/v2"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

// CardsPerPlayer is the size of every opening hand.
const CardsPerPlayer = 4

// Result is the outcome of an opening deal.
type Result struct {
	Hands      map[int][]card.ID // player id -> four cards
	RoleHolder int
	Deck       []card.ID // front is the next card to draw
}

// UnlockCards selects the catalog cards legal for playerCount players, in catalog order.
func UnlockCards(catalog []card.Card, playerCount int) []card.Card {
	assigned := make([]card.Card, 0, len(catalog))
	for _, c := range catalog {
		if c.Unlocked(playerCount) {
			assigned = append(assigned, c)
		}
	}
	return assigned
}

// InitialDeal deals the opening hands.
//
// The first 4n-1 dealable cards of assigned, plus the role card, are shuffled
// and dealt four at a time in players order; whoever receives the role card
// becomes the role holder. The infection cards and the dealable cards left out
// of the pool form the shuffled draw pile.
func InitialDeal(assigned []card.Card, players []int, rng *rand.Rand) (*Result, error) {
	if err := checkRoster(players); err != nil {
		return nil, err
	}
	role, err := findRoleCard(assigned)
	if err != nil {
		return nil, err
	}

	fillers, infections := partition(assigned)
	need := CardsPerPlayer*len(players) - 1
	if len(fillers) < need {
		return nil, fmt.Errorf("%w: %d players need %d dealable cards, have %d",
			apperrors.ErrInsufficientCards, len(players), need, len(fillers))
	}

	pool := make([]card.ID, 0, need+1)
	pool = append(pool, fillers[:need]...)
	pool = append(pool, role)
	shuffle(rng, pool)

	res := &Result{Hands: make(map[int][]card.ID, len(players))}
	for i, player := range players {
		hand := make([]card.ID, CardsPerPlayer)
		copy(hand, pool[i*CardsPerPlayer:(i+1)*CardsPerPlayer])
		for _, id := range hand {
			if id == role {
				res.RoleHolder = player
			}
		}
		res.Hands[player] = hand
	}

	deck := make([]card.ID, 0, len(infections)+len(fillers)-need)
	deck = append(deck, infections...)
	deck = append(deck, fillers[need:]...)
	shuffle(rng, deck)
	res.Deck = deck

	return res, nil
}

// RandomDeal is the variant entry path: the role holder is picked uniformly
// at random before any card moves, receives the role card in its first slot,
// and the rest of every hand is drawn at random from all dealable cards.
// hook, if non-nil, may swap the holder's first random card for a specific
// card still in the draw pile; a failing hook is ignored.
func RandomDeal(assigned []card.Card, players []int, rng *rand.Rand, hook SubstitutionHook) (*Result, error) {
	if err := checkRoster(players); err != nil {
		return nil, err
	}
	role, err := findRoleCard(assigned)
	if err != nil {
		return nil, err
	}

	fillers, infections := partition(assigned)
	need := CardsPerPlayer*len(players) - 1
	if len(fillers) < need {
		return nil, fmt.Errorf("%w: %d players need %d dealable cards, have %d",
			apperrors.ErrInsufficientCards, len(players), need, len(fillers))
	}

	holderIdx := intN(rng, len(players))
	shuffled := append([]card.ID(nil), fillers...)
	shuffle(rng, shuffled)

	res := &Result{
		Hands:      make(map[int][]card.ID, len(players)),
		RoleHolder: players[holderIdx],
	}
	next := 0
	for i, player := range players {
		hand := make([]card.ID, 0, CardsPerPlayer)
		if i == holderIdx {
			hand = append(hand, role)
		}
		for len(hand) < CardsPerPlayer {
			hand = append(hand, shuffled[next])
			next++
		}
		res.Hands[player] = hand
	}

	rest := make([]card.ID, 0, len(infections)+len(shuffled)-next)
	rest = append(rest, infections...)
	rest = append(rest, shuffled[next:]...)

	if sub, ok := safeSubstitute(hook, assigned, len(players)); ok {
		if at := indexOf(rest, sub); at >= 0 {
			holderHand := res.Hands[res.RoleHolder]
			holderHand[1], rest[at] = rest[at], holderHand[1]
		}
	}

	shuffle(rng, rest)
	res.Deck = rest
	return res, nil
}

func checkRoster(players []int) error {
	if len(players) == 0 {
		return fmt.Errorf("%w: no players to deal to", apperrors.ErrInvalidRoster)
	}
	seen := make(map[int]struct{}, len(players))
	for _, id := range players {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: player %d listed twice", apperrors.ErrInvalidRoster, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func findRoleCard(assigned []card.Card) (card.ID, error) {
	var (
		role  card.ID
		count int
	)
	for _, c := range assigned {
		if c.Type == card.TypeRoleReveal {
			role = c.ID
			count++
		}
	}
	if count != 1 {
		return 0, fmt.Errorf("%w: found %d", apperrors.ErrMissingRoleCard, count)
	}
	return role, nil
}

// partition splits assigned into dealable cards and infection cards, keeping order.
func partition(assigned []card.Card) (fillers, infections []card.ID) {
	for _, c := range assigned {
		switch {
		case c.Dealable():
			fillers = append(fillers, c.ID)
		case c.Type == card.TypeInfection:
			infections = append(infections, c.ID)
		}
	}
	return fillers, infections
}

func indexOf(ids []card.ID, id card.ID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func shuffle(rng *rand.Rand, ids []card.ID) {
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
	if rng == nil {
		rand.Shuffle(len(ids), swap)
		return
	}
	rng.Shuffle(len(ids), swap)
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
