package protocol

// Error codes
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002
	ErrCodeServerMaintenance = 1003

	// lobby
	ErrCodeGameNotFound     = 2001
	ErrCodeGameFull         = 2002
	ErrCodeNotInGame        = 2003
	ErrCodeGameStarted      = 2004
	ErrCodeAlreadyInGame    = 2005
	ErrCodeWrongPassword    = 2006
	ErrCodeNotHost          = 2007
	ErrCodeNotEnoughPlayers = 2008
	ErrCodeNameTaken        = 2009

	// play
	ErrCodeGameNotStarted = 3001
	ErrCodeNotYourTurn    = 3002
	ErrCodeCardNotInHand  = 3003
	ErrCodeGameFinished   = 3004
	ErrCodePlayerNotFound = 3005
	ErrCodePlayerDead     = 3006
	ErrCodeNotRoleHolder  = 3007

	// engine
	ErrCodeInvalidRoster     = 4001
	ErrCodeEmptyTurnOrder    = 4002
	ErrCodeEmptyDeck         = 4003
	ErrCodeMissingRoleCard   = 4004
	ErrCodeInsufficientCards = 4005

	// integrity, never retried
	ErrCodeRoleHolderNotFound = 5001
	ErrCodeStateIntegrity     = 5002
	ErrCodeSessionBroken      = 5003
)

// ErrorMessages maps an error code to its client-facing text.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "unknown error",
	ErrCodeInvalidMsg:        "invalid message",
	ErrCodeRateLimit:         "too many requests",
	ErrCodeServerMaintenance: "server is under maintenance",

	ErrCodeGameNotFound:     "game not found",
	ErrCodeGameFull:         "game is full",
	ErrCodeNotInGame:        "you are not in this game",
	ErrCodeGameStarted:      "game already started",
	ErrCodeAlreadyInGame:    "player already in game",
	ErrCodeWrongPassword:    "wrong password",
	ErrCodeNotHost:          "only the host can do that",
	ErrCodeNotEnoughPlayers: "not enough players",
	ErrCodeNameTaken:        "game name already in use",

	ErrCodeGameNotStarted: "game has not started",
	ErrCodeNotYourTurn:    "not your turn",
	ErrCodeCardNotInHand:  "card is not in your hand",
	ErrCodeGameFinished:   "game is finished",
	ErrCodePlayerNotFound: "player not found",
	ErrCodePlayerDead:     "player is not alive",
	ErrCodeNotRoleHolder:  "only the role holder can do that",

	ErrCodeInvalidRoster:     "invalid roster",
	ErrCodeEmptyTurnOrder:    "turn order is empty",
	ErrCodeEmptyDeck:         "deck is empty",
	ErrCodeMissingRoleCard:   "catalog must contain exactly one role card",
	ErrCodeInsufficientCards: "not enough cards for this many players",

	ErrCodeRoleHolderNotFound: "role holder is not in the game",
	ErrCodeStateIntegrity:     "game state is corrupted",
	ErrCodeSessionBroken:      "game is unusable",
}
