package protocol

// --- client requests ---

// PingPayload is a heartbeat request.
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // client clock, milliseconds
}

// CreateGamePayload opens a new game. Zero bounds take the server defaults.
type CreateGamePayload struct {
	Name       string `json:"name"`
	Password   string `json:"password,omitempty"`
	MinPlayers int    `json:"min_players,omitempty"`
	MaxPlayers int    `json:"max_players,omitempty"`
}

// JoinGamePayload joins a waiting game.
type JoinGamePayload struct {
	GameID   int    `json:"game_id"`
	Password string `json:"password,omitempty"`
}

// StartGamePayload starts the caller's game.
type StartGamePayload struct {
	Variant bool `json:"variant,omitempty"` // pick the role holder before dealing
}

// CardPayload names a card in the caller's hand.
type CardPayload struct {
	CardID int `json:"card_id"`
}

// TargetPayload names the player an action is aimed at.
type TargetPayload struct {
	PlayerID int `json:"player_id"`
}

// --- server responses ---

// ConnectedPayload greets a new connection. Reconnect by opening a new
// connection with ?token=<reconnect_token>.
type ConnectedPayload struct {
	PlayerID       int    `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token"`
	Reconnected    bool   `json:"reconnected,omitempty"`
}

// PongPayload answers a ping.
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// OnlineCountPayload answers get_online_count.
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// PlayerInfo is the public view of a player. Hands are never included.
type PlayerInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Alive     bool   `json:"alive"`
	Infected  bool   `json:"infected,omitempty"`
	HandCount int    `json:"hand_count,omitempty"`
	IsHost    bool   `json:"is_host,omitempty"`
}

// GameInfo describes a game to its players.
type GameInfo struct {
	GameID     int          `json:"game_id"`
	Name       string       `json:"name"`
	Status     string       `json:"status"`
	Host       int          `json:"host"`
	MinPlayers int          `json:"min_players"`
	MaxPlayers int          `json:"max_players"`
	Players    []PlayerInfo `json:"players"`
}

// GameCreatedPayload confirms a created game.
type GameCreatedPayload struct {
	Game GameInfo `json:"game"`
}

// GameJoinedPayload confirms a join to the joining player.
type GameJoinedPayload struct {
	Game GameInfo `json:"game"`
}

// PlayerJoinedPayload tells the others someone joined.
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload tells the others someone left.
type PlayerLeftPayload struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// GameClosedPayload tells the players a waiting game is gone.
type GameClosedPayload struct {
	GameID int    `json:"game_id"`
	Reason string `json:"reason"` // host_left or timeout
}

// PresencePayload tells a game a player's connection dropped or came back.
type PresencePayload struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// GameListItem is a joinable game.
type GameListItem struct {
	GameID      int    `json:"game_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	HasPassword bool   `json:"has_password"`
}

// GameListPayload answers list_games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// GameStartedPayload announces the start and the opening turn order.
type GameStartedPayload struct {
	TurnOrder []int `json:"turn_order"`
	DeckSize  int   `json:"deck_size"`
}

// CardInfo is a card as shown to its owner.
type CardInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// HandPayload sends a player their own hand.
type HandPayload struct {
	Cards []CardInfo `json:"cards"`
}

// TurnPayload announces whose turn it is.
type TurnPayload struct {
	PlayerID int `json:"player_id"`
}

// CardDrawnPayload tells the drawing player what they got.
type CardDrawnPayload struct {
	Card     CardInfo `json:"card"`
	DeckSize int      `json:"deck_size"`
}

// CardDiscardedPayload announces a discard to the table.
type CardDiscardedPayload struct {
	PlayerID int      `json:"player_id"`
	Card     CardInfo `json:"card"`
}

// CardReturnedPayload announces that a player put a card under the deck.
// The card itself stays hidden.
type CardReturnedPayload struct {
	PlayerID int `json:"player_id"`
	DeckSize int `json:"deck_size"`
}

// PlayerEliminatedPayload announces an elimination.
type PlayerEliminatedPayload struct {
	PlayerID int  `json:"player_id"`
	Forfeit  bool `json:"forfeit,omitempty"`
}

// InfectedPayload tells a player they were infected. Only the target gets it.
type InfectedPayload struct {
	ByPlayer int `json:"by_player"`
}

// GameOverPayload announces the winner and reveals the role holder.
type GameOverPayload struct {
	Winner     string `json:"winner"` // impostor or survivors
	RoleHolder int    `json:"role_holder"`
}

// StatePayload is a player's view of their game.
type StatePayload struct {
	Game        GameInfo   `json:"game"`
	TurnOrder   []int      `json:"turn_order,omitempty"`
	CurrentTurn int        `json:"current_turn,omitempty"`
	DeckSize    int        `json:"deck_size"`
	DiscardPile []CardInfo `json:"discard_pile,omitempty"`
	Hand        []CardInfo `json:"hand,omitempty"`
}

// ErrorPayload reports a failed request.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
