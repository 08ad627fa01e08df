package handler

import (
	"log"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/session"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// handleCreateGame opens a game hosted by the caller.
func (h *Handler) handleCreateGame(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "server is under maintenance, no new games"))
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	host := session.Player{ID: client.GetPlayerID(), Name: client.GetName()}
	g, err := h.manager.CreateGame(ctx, host, payload.Name, payload.Password, payload.MinPlayers, payload.MaxPlayers)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetGame(g.ID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameCreated, protocol.GameCreatedPayload{
		Game: gameInfo(g),
	}))
}

// handleJoinGame adds the caller to a waiting game.
func (h *Handler) handleJoinGame(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "server is under maintenance, no new games"))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	p := session.Player{ID: client.GetPlayerID(), Name: client.GetName()}
	g, err := h.manager.JoinGame(ctx, p, payload.GameID, payload.Password)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetGame(g.ID)
	info := gameInfo(g)
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameJoined, protocol.GameJoinedPayload{Game: info}))

	joined := protocol.PlayerInfo{ID: p.ID, Name: p.Name, Alive: true}
	h.sendToOthers(g.PlayerIDs(), p.ID, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: joined,
	}))
}

// handleLeaveGame takes the caller out of their game. In a running game this
// is a forfeit.
func (h *Handler) handleLeaveGame(client types.ClientInterface) {
	err := h.leave(client.GetPlayerID(), client.GetName())
	client.SetGame(0)
	if err != nil {
		h.sendError(client, err)
	}
}

// leave removes a player from their game and tells the others.
func (h *Handler) leave(playerID int, name string) error {
	ctx, cancel := newContext()
	defer cancel()

	dep, err := h.manager.LeaveGame(ctx, playerID)
	if err != nil {
		return err
	}

	g := dep.Game
	switch {
	case dep.Disbanded:
		h.sendToOthers(dep.Released, playerID, codec.MustNewMessage(protocol.MsgGameClosed, protocol.GameClosedPayload{
			GameID: g.ID,
			Reason: "host_left",
		}))

	case dep.Eliminated:
		h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgPlayerEliminated, protocol.PlayerEliminatedPayload{
			PlayerID: playerID,
			Forfeit:  true,
		}))
		if dep.Winner != win.SideNone {
			h.announceWinner(g, dep.Winner)
		} else {
			h.announceTurn(g)
		}

	default:
		h.sendToOthers(g.PlayerIDs(), playerID, codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
			PlayerID:   playerID,
			PlayerName: name,
		}))
	}

	h.unbind(dep.Released)
	log.Printf("👋 player %d (%s) left game %d", playerID, name, g.ID)
	return nil
}

// handleStartGame deals the caller's game.
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	g, err := h.manager.StartGame(ctx, client.GetPlayerID(), payload.Variant)
	if err != nil {
		h.sendError(client, err)
		return
	}

	players := g.PlayerIDs()
	h.sendTo(players, codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		TurnOrder: g.TurnOrder(),
		DeckSize:  g.DeckSize(),
	}))
	for _, id := range players {
		h.sendHand(g, id)
	}
	h.announceTurn(g)
}

func (h *Handler) handleListGames(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameList, protocol.GameListPayload{
		Games: h.manager.ListGames(),
	}))
}
