// Package turn builds and rotates the order in which players act.
//
// A turn order is a plain slice of player ids; the front entry is the player
// whose turn it is. Every function returns a new slice and leaves its input
// untouched.
package turn

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
)

// Build shuffles the alive players and moves the host to the back, so the host
// acts last in the first lap.
func Build(players []int, host int, rng *rand.Rand) ([]int, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", apperrors.ErrInvalidRoster)
	}
	seen := make(map[int]struct{}, len(players))
	for _, id := range players {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: player %d listed twice", apperrors.ErrInvalidRoster, id)
		}
		seen[id] = struct{}{}
	}
	if _, ok := seen[host]; !ok {
		return nil, fmt.Errorf("%w: host %d is not an alive player", apperrors.ErrInvalidRoster, host)
	}

	order := slices.Clone(players)
	shuffle(rng, len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	hostIdx := slices.Index(order, host)
	order = append(slices.Delete(order, hostIdx, hostIdx+1), host)
	return order, nil
}

// Rotate moves the front player to the back.
func Rotate(order []int) ([]int, error) {
	if len(order) == 0 {
		return nil, apperrors.ErrEmptyTurnOrder
	}
	next := make([]int, 0, len(order))
	next = append(next, order[1:]...)
	return append(next, order[0]), nil
}

// Current returns the player whose turn it is.
func Current(order []int) (int, error) {
	if len(order) == 0 {
		return 0, apperrors.ErrEmptyTurnOrder
	}
	return order[0], nil
}

// IsTurn reports whether player is at the front of order.
func IsTurn(order []int, player int) bool {
	return len(order) > 0 && order[0] == player
}

// FilterAlive drops players for which alive returns false, keeping relative order.
func FilterAlive(order []int, alive func(int) bool) []int {
	out := make([]int, 0, len(order))
	for _, id := range order {
		if alive(id) {
			out = append(out, id)
		}
	}
	return out
}

func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	rng.Shuffle(n, swap)
}
