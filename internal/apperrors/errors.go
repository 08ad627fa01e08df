package apperrors

import (
	"errors"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

// GameError is a coded error shared by the engine, the session and the transport.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// Lobby errors
var (
	ErrGameNotFound     = newError(protocol.ErrCodeGameNotFound)
	ErrGameFull         = newError(protocol.ErrCodeGameFull)
	ErrNotInGame        = newError(protocol.ErrCodeNotInGame)
	ErrGameStarted      = newError(protocol.ErrCodeGameStarted)
	ErrAlreadyInGame    = newError(protocol.ErrCodeAlreadyInGame)
	ErrWrongPassword    = newError(protocol.ErrCodeWrongPassword)
	ErrNotHost          = newError(protocol.ErrCodeNotHost)
	ErrNotEnoughPlayers = newError(protocol.ErrCodeNotEnoughPlayers)
	ErrNameTaken        = newError(protocol.ErrCodeNameTaken)
)

// Play errors
var (
	ErrGameNotStarted = newError(protocol.ErrCodeGameNotStarted)
	ErrNotYourTurn    = newError(protocol.ErrCodeNotYourTurn)
	ErrCardNotInHand  = newError(protocol.ErrCodeCardNotInHand)
	ErrGameFinished   = newError(protocol.ErrCodeGameFinished)
	ErrPlayerNotFound = newError(protocol.ErrCodePlayerNotFound)
	ErrPlayerDead     = newError(protocol.ErrCodePlayerDead)
	ErrNotRoleHolder  = newError(protocol.ErrCodeNotRoleHolder)
)

// Engine errors. These are caller preconditions and are raised before any mutation.
var (
	ErrInvalidRoster     = newError(protocol.ErrCodeInvalidRoster)
	ErrEmptyTurnOrder    = newError(protocol.ErrCodeEmptyTurnOrder)
	ErrEmptyDeck         = newError(protocol.ErrCodeEmptyDeck)
	ErrMissingRoleCard   = newError(protocol.ErrCodeMissingRoleCard)
	ErrInsufficientCards = newError(protocol.ErrCodeInsufficientCards)
)

// Integrity errors. A session that reports one of these is already corrupt.
var (
	ErrRoleHolderNotFound = newError(protocol.ErrCodeRoleHolderNotFound)
	ErrStateIntegrity     = newError(protocol.ErrCodeStateIntegrity)
	ErrSessionBroken      = newError(protocol.ErrCodeSessionBroken)
)

// IsFatal reports whether err means the session's invariants were broken by an earlier bug.
// Fatal errors must not be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrRoleHolderNotFound) ||
		errors.Is(err, ErrStateIntegrity) ||
		errors.Is(err, ErrSessionBroken)
}

// Code extracts the protocol error code carried by err, or ErrCodeUnknown.
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
