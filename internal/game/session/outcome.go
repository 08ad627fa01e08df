package session

import (
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
)

// Once a session is FINISHED the checks below only report the recorded
// winner; they never mutate again.

// CheckImpostorWin finishes the game if the role holder is the last alive,
// uninfected player.
func (s *GameSession) CheckImpostorWin() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return s.winner == win.SideImpostor, nil
	}
	holder, err := s.checkable()
	if err != nil {
		return false, err
	}
	if win.ImpostorWins(s.statuses(), holder) {
		s.finish(win.SideImpostor)
		return true, nil
	}
	return false, nil
}

// CheckSurvivorsWin finishes the game if the role holder is dead.
func (s *GameSession) CheckSurvivorsWin() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return s.winner == win.SideSurvivors, nil
	}
	holder, err := s.checkable()
	if err != nil {
		return false, err
	}
	won, err := win.SurvivorsWin(s.statuses(), holder)
	if err != nil {
		return false, s.markBroken(err)
	}
	if won {
		s.finish(win.SideSurvivors)
	}
	return won, nil
}

// Evaluate runs both checks, impostor first, and returns the winning side.
func (s *GameSession) Evaluate() (win.Side, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return s.winner, nil
	}
	return s.evaluate()
}

// evaluate is Evaluate for callers that already hold s.mu.
func (s *GameSession) evaluate() (win.Side, error) {
	holder, err := s.checkable()
	if err != nil {
		return win.SideNone, err
	}
	side, err := win.Evaluate(s.statuses(), holder)
	if err != nil {
		return win.SideNone, s.markBroken(err)
	}
	if side != win.SideNone {
		s.finish(side)
	}
	return side, nil
}

func (s *GameSession) checkable() (int, error) {
	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	if s.roleHolder == nil {
		return 0, s.markBroken(apperrors.ErrRoleHolderNotFound)
	}
	return *s.roleHolder, nil
}

func (s *GameSession) statuses() []win.Status {
	out := make([]win.Status, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, win.Status{ID: p.ID, Alive: p.Alive, Infected: p.Infected})
	}
	return out
}

func (s *GameSession) finish(side win.Side) {
	s.status = StatusFinished
	s.winner = side
}
