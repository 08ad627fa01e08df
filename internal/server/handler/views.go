package handler

import (
	"fmt"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/session"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

func gameInfo(g *session.GameSession) protocol.GameInfo {
	minPlayers, maxPlayers := g.Bounds()
	host := g.Host()

	players := g.Players()
	infos := make([]protocol.PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, playerInfo(p, host))
	}

	return protocol.GameInfo{
		GameID:     g.ID,
		Name:       g.Name,
		Status:     g.Status().String(),
		Host:       host,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Players:    infos,
	}
}

// playerInfo never exposes infection. Only the infected player and the role
// holder learn about it.
func playerInfo(p session.PlayerInfo, host int) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		Alive:     p.Alive,
		HandCount: p.HandCount,
		IsHost:    p.ID == host,
	}
}

func (h *Handler) cardInfo(id card.ID) protocol.CardInfo {
	if h.catalog != nil {
		if c, ok := h.catalog.Get(id); ok {
			return protocol.CardInfo{ID: int(c.ID), Name: c.Name, Type: c.Type.String()}
		}
	}
	return protocol.CardInfo{ID: int(id), Name: fmt.Sprintf("card-%d", id)}
}

func (h *Handler) cardInfos(ids []card.ID) []protocol.CardInfo {
	out := make([]protocol.CardInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.cardInfo(id))
	}
	return out
}

// stateFor builds playerID's view of g.
func (h *Handler) stateFor(g *session.GameSession, playerID int) protocol.StatePayload {
	state := protocol.StatePayload{
		Game:        gameInfo(g),
		TurnOrder:   g.TurnOrder(),
		DeckSize:    g.DeckSize(),
		DiscardPile: h.cardInfos(g.DiscardPile()),
	}
	if current, err := g.CurrentPlayer(); err == nil {
		state.CurrentTurn = current
	}
	if hand, err := g.Hand(playerID); err == nil {
		state.Hand = h.cardInfos(hand)
	}
	if p, ok := rosterEntry(g, playerID); ok && p.Infected {
		for i := range state.Game.Players {
			if state.Game.Players[i].ID == playerID {
				state.Game.Players[i].Infected = true
			}
		}
	}
	return state
}

func rosterEntry(g *session.GameSession, playerID int) (session.PlayerInfo, bool) {
	for _, p := range g.Players() {
		if p.ID == playerID {
			return p, true
		}
	}
	return session.PlayerInfo{}, false
}
