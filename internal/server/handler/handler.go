// Package handler dispatches client messages to the session manager and
// fans the results out to the players involved.
package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/session"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// requestTimeout bounds the storage work done for a single message.
const requestTimeout = 5 * time.Second

// HandlerDeps are the handler's collaborators.
type HandlerDeps struct {
	Server  types.ServerInterface
	Manager *session.Manager
	Catalog *card.Catalog
}

// Handler routes client messages.
type Handler struct {
	server   types.ServerInterface
	manager  *session.Manager
	catalog  *card.Catalog
	handlers map[protocol.MessageType]handlerFunc
}

type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler creates a handler.
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:  deps.Server,
		manager: deps.Manager,
		catalog: deps.Catalog,
	}
	h.initHandlers()
	return h
}

func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// connection
		protocol.MsgPing:           h.handlePing,
		protocol.MsgGetOnlineCount: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetOnlineCount(c) },

		// lobby
		protocol.MsgCreateGame: h.handleCreateGame,
		protocol.MsgJoinGame:   h.handleJoinGame,
		protocol.MsgLeaveGame:  func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveGame(c) },
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgListGames:  func(c types.ClientInterface, _ *protocol.Message) { h.handleListGames(c) },

		// play
		protocol.MsgDrawCard:        func(c types.ClientInterface, _ *protocol.Message) { h.handleDrawCard(c) },
		protocol.MsgDiscardCard:     h.handleDiscardCard,
		protocol.MsgReturnCard:      h.handleReturnCard,
		protocol.MsgEndTurn:         func(c types.ClientInterface, _ *protocol.Message) { h.handleEndTurn(c) },
		protocol.MsgEliminatePlayer: h.handleEliminatePlayer,
		protocol.MsgInfectPlayer:    h.handleInfectPlayer,
		protocol.MsgGetState:        func(c types.ClientInterface, _ *protocol.Message) { h.handleGetState(c) },
	}
}

// Handle dispatches one message.
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️ unknown message type '%s' from player %d (%s)", msg.Type, client.GetPlayerID(), client.GetName())
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// HandleDisconnect runs when a client's connection closes for good. A player
// who drops out of a game leaves it.
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	if client.GetGame() == 0 && h.manager.GameOf(client.GetPlayerID()) == nil {
		return
	}
	h.handleLeaveGame(client)
}

// HandleDrop runs when a client's connection closes and it may come back. A
// live player of a running game keeps their seat and the table is told; held
// reports that. Anyone else leaves at once.
func (h *Handler) HandleDrop(client types.ClientInterface) (held bool) {
	playerID := client.GetPlayerID()
	g := h.manager.GameOf(playerID)
	if g == nil || g.Status() != session.StatusStarted || !g.IsAlive(playerID) {
		h.HandleDisconnect(client)
		return false
	}

	h.sendToOthers(g.PlayerIDs(), playerID, codec.MustNewMessage(protocol.MsgPlayerDisconnected, protocol.PresencePayload{
		PlayerID:   playerID,
		PlayerName: client.GetName(),
	}))
	log.Printf("📴 player %d (%s) dropped from game %d, seat held", playerID, client.GetName(), g.ID)
	return true
}

// HandleReconnect puts a returning player back at their table.
func (h *Handler) HandleReconnect(client types.ClientInterface) {
	playerID := client.GetPlayerID()
	g := h.manager.GameOf(playerID)
	if g == nil {
		client.SetGame(0)
		return
	}

	client.SetGame(g.ID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgState, h.stateFor(g, playerID)))
	h.sendHand(g, playerID)
	h.sendToOthers(g.PlayerIDs(), playerID, codec.MustNewMessage(protocol.MsgPlayerReconnected, protocol.PresencePayload{
		PlayerID:   playerID,
		PlayerName: client.GetName(),
	}))
	log.Printf("🔌 player %d (%s) back in game %d", playerID, client.GetName(), g.ID)
}

// Forfeit gives up the seat of a player who did not come back in time.
func (h *Handler) Forfeit(playerID int, name string) {
	if h.manager.GameOf(playerID) == nil {
		return
	}
	if err := h.leave(playerID, name); err != nil {
		log.Printf("⚠️ forfeit of player %d failed: %v", playerID, err)
	}
}

// NotifyExpired tells the players of a waiting game dropped for inactivity.
// It is registered as the manager's expiry handler.
func (h *Handler) NotifyExpired(g *session.GameSession, released []int) {
	msg := codec.MustNewMessage(protocol.MsgGameClosed, protocol.GameClosedPayload{
		GameID: g.ID,
		Reason: "timeout",
	})
	h.sendTo(released, msg)
	h.unbind(released)
}

// --- helpers ---

func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	log.Printf("⚠️ request from player %d failed: %v", client.GetPlayerID(), err)
	client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}

// sendTo delivers msg to every listed player that is still connected.
func (h *Handler) sendTo(playerIDs []int, msg *protocol.Message) {
	for _, id := range playerIDs {
		if c := h.server.GetClientByPlayerID(id); c != nil {
			c.SendMessage(msg)
		}
	}
}

// sendToOthers is sendTo without except.
func (h *Handler) sendToOthers(playerIDs []int, except int, msg *protocol.Message) {
	for _, id := range playerIDs {
		if id == except {
			continue
		}
		if c := h.server.GetClientByPlayerID(id); c != nil {
			c.SendMessage(msg)
		}
	}
}

// unbind returns released players to the lobby.
func (h *Handler) unbind(playerIDs []int) {
	for _, id := range playerIDs {
		if c := h.server.GetClientByPlayerID(id); c != nil {
			c.SetGame(0)
		}
	}
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
