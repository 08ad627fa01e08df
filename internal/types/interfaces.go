package types

import (
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

// ServerInterface is what handlers need from the server. It lives here to
// break the import cycle between server and handler.
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
	GetClientByPlayerID(playerID int) ClientInterface
}

// ClientInterface is a connected player.
type ClientInterface interface {
	GetID() string // connection id
	GetPlayerID() int
	GetName() string
	GetGame() int // 0 when in the lobby
	SetGame(gameID int)
	SendMessage(msg *protocol.Message)
	Close()
}
