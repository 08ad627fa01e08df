package handler

import (
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/session"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/win"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// handleDrawCard draws for the active player. Only the drawer sees the card.
func (h *Handler) handleDrawCard(client types.ClientInterface) {
	ctx, cancel := newContext()
	defer cancel()

	g, drawn, err := h.manager.DrawCard(ctx, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgCardDrawn, protocol.CardDrawnPayload{
		Card:     h.cardInfo(drawn),
		DeckSize: g.DeckSize(),
	}))
}

// handleDiscardCard discards a card face up.
func (h *Handler) handleDiscardCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	playerID := client.GetPlayerID()
	g, err := h.manager.DiscardCard(ctx, playerID, card.ID(payload.CardID))
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgCardDiscarded, protocol.CardDiscardedPayload{
		PlayerID: playerID,
		Card:     h.cardInfo(card.ID(payload.CardID)),
	}))
}

// handleReturnCard puts a card face down under the deck.
func (h *Handler) handleReturnCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	playerID := client.GetPlayerID()
	g, err := h.manager.ReturnToDeck(ctx, playerID, card.ID(payload.CardID))
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgCardReturned, protocol.CardReturnedPayload{
		PlayerID: playerID,
		DeckSize: g.DeckSize(),
	}))
}

func (h *Handler) handleEndTurn(client types.ClientInterface) {
	ctx, cancel := newContext()
	defer cancel()

	g, next, err := h.manager.EndTurn(ctx, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgTurn, protocol.TurnPayload{PlayerID: next}))
}

// handleEliminatePlayer lets the active player eliminate someone.
func (h *Handler) handleEliminatePlayer(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.TargetPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	out, err := h.manager.EliminatePlayer(ctx, client.GetPlayerID(), payload.PlayerID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	g := out.Game
	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgPlayerEliminated, protocol.PlayerEliminatedPayload{
		PlayerID: payload.PlayerID,
	}))
	if out.Winner != win.SideNone {
		h.announceWinner(g, out.Winner)
		h.unbind(out.Released)
		return
	}
	h.announceTurn(g)
}

// handleInfectPlayer lets the role holder infect someone. Only the target is
// told; the table sees nothing.
func (h *Handler) handleInfectPlayer(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.TargetPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := newContext()
	defer cancel()

	playerID := client.GetPlayerID()
	out, err := h.manager.InfectPlayer(ctx, playerID, payload.PlayerID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.sendTo([]int{payload.PlayerID}, codec.MustNewMessage(protocol.MsgInfected, protocol.InfectedPayload{
		ByPlayer: playerID,
	}))
	if out.Winner != win.SideNone {
		h.announceWinner(out.Game, out.Winner)
		h.unbind(out.Released)
	}
}

// handleGetState sends the caller their view of their game.
func (h *Handler) handleGetState(client types.ClientInterface) {
	g := h.manager.GameOf(client.GetPlayerID())
	if g == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInGame))
		return
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgState, h.stateFor(g, client.GetPlayerID())))
}

// --- broadcasts ---

func (h *Handler) sendHand(g *session.GameSession, playerID int) {
	hand, err := g.Hand(playerID)
	if err != nil {
		return
	}
	h.sendTo([]int{playerID}, codec.MustNewMessage(protocol.MsgHand, protocol.HandPayload{
		Cards: h.cardInfos(hand),
	}))
}

func (h *Handler) announceTurn(g *session.GameSession) {
	current, err := g.CurrentPlayer()
	if err != nil {
		return
	}
	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgTurn, protocol.TurnPayload{PlayerID: current}))
}

func (h *Handler) announceWinner(g *session.GameSession, side win.Side) {
	holder, _ := g.Reveal()
	h.sendTo(g.PlayerIDs(), codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Winner:     side.String(),
		RoleHolder: holder,
	}))
}
