package protocol

import "encoding/json"

// Message is the envelope of every websocket frame.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType names a message.
type MessageType string

// client -> server
const (
	MsgPing           MessageType = "ping"
	MsgGetOnlineCount MessageType = "get_online_count"

	// lobby
	MsgCreateGame MessageType = "create_game"
	MsgJoinGame   MessageType = "join_game"
	MsgLeaveGame  MessageType = "leave_game"
	MsgStartGame  MessageType = "start_game"
	MsgListGames  MessageType = "list_games"

	// play
	MsgDrawCard        MessageType = "draw_card"
	MsgDiscardCard     MessageType = "discard_card"
	MsgReturnCard      MessageType = "return_card"
	MsgEndTurn         MessageType = "end_turn"
	MsgEliminatePlayer MessageType = "eliminate_player"
	MsgInfectPlayer    MessageType = "infect_player"
	MsgGetState        MessageType = "get_state"
)

// server -> client
const (
	MsgConnected   MessageType = "connected"
	MsgPong        MessageType = "pong"
	MsgOnlineCount MessageType = "online_count"

	// lobby
	MsgGameCreated  MessageType = "game_created"
	MsgGameJoined   MessageType = "game_joined"
	MsgPlayerJoined MessageType = "player_joined"
	MsgPlayerLeft   MessageType = "player_left"
	MsgGameList     MessageType = "game_list"
	MsgGameClosed   MessageType = "game_closed"

	// presence
	MsgPlayerDisconnected MessageType = "player_disconnected"
	MsgPlayerReconnected  MessageType = "player_reconnected"

	// play
	MsgGameStarted      MessageType = "game_started"
	MsgHand             MessageType = "hand"
	MsgTurn             MessageType = "turn"
	MsgCardDrawn        MessageType = "card_drawn"
	MsgCardDiscarded    MessageType = "card_discarded"
	MsgCardReturned     MessageType = "card_returned"
	MsgPlayerEliminated MessageType = "player_eliminated"
	MsgInfected         MessageType = "infected"
	MsgGameOver         MessageType = "game_over"
	MsgState            MessageType = "state"

	MsgError MessageType = "error"
)
