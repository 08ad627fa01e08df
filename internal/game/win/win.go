// Package win decides whether either side has won.
package win

import (
	"fmt"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
)

// Status is the slice of a roster entry the evaluator reads.
type Status struct {
	ID       int
	Alive    bool
	Infected bool
}

// Side identifies the winning team.
type Side int

const (
	SideNone Side = iota
	SideImpostor
	SideSurvivors
)

func (s Side) String() string {
	switch s {
	case SideImpostor:
		return "impostor"
	case SideSurvivors:
		return "survivors"
	default:
		return "none"
	}
}

// ImpostorWins reports whether the role holder is the only alive, uninfected player.
func ImpostorWins(players []Status, holder int) bool {
	var (
		clean int
		last  int
	)
	for _, p := range players {
		if p.Alive && !p.Infected {
			clean++
			last = p.ID
		}
	}
	return clean == 1 && last == holder
}

// SurvivorsWin reports whether the role holder has been eliminated.
func SurvivorsWin(players []Status, holder int) (bool, error) {
	for _, p := range players {
		if p.ID == holder {
			return !p.Alive, nil
		}
	}
	return false, fmt.Errorf("%w: player %d", apperrors.ErrRoleHolderNotFound, holder)
}

// Evaluate runs both checks over the same snapshot. The impostor check goes first.
func Evaluate(players []Status, holder int) (Side, error) {
	if ImpostorWins(players, holder) {
		return SideImpostor, nil
	}
	survivors, err := SurvivorsWin(players, holder)
	if err != nil {
		return SideNone, err
	}
	if survivors {
		return SideSurvivors, nil
	}
	return SideNone, nil
}
