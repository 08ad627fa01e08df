package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/presence"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// handleWebSocket admits a connection. Checks run cheapest first.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if s.IsMaintenanceMode() {
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// the slot is held for the life of the connection
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 connection limit (%d) reached, IP %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	var held atomic.Bool
	held.Store(true)
	releaseSlot := func() {
		if held.CompareAndSwap(true, false) {
			<-s.semaphore
		}
	}

	if !s.ipFilter.IsAllowed(clientIP) {
		releaseSlot()
		log.Printf("🚫 IP %s rejected by filter", clientIP)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if !s.originChecker.Check(r) {
		releaseSlot()
		log.Printf("🚫 origin %q rejected (IP %s)", r.Header.Get("Origin"), clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	if !s.rateLimiter.Allow(clientIP) {
		releaseSlot()
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	seat, reconnected, err := s.takeSeat(ctx, r.URL.Query().Get("token"), r.URL.Query().Get("name"))
	cancel()
	if err != nil {
		releaseSlot()
		log.Printf("⚠️ failed to seat a player: %v", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		releaseSlot()
		if reconnected {
			s.seats.SetOffline(seat.PlayerID)
		} else {
			s.seats.Remove(seat.PlayerID)
		}
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s, conn, seat.PlayerID, seat.Name)
	client.IP = clientIP
	client.onClose = releaseSlot
	if previous := s.registerClient(client); previous != nil {
		previous.Close()
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       client.PlayerID,
		PlayerName:     client.Name,
		ReconnectToken: seat.Token,
		Reconnected:    reconnected,
	}))
	if reconnected {
		s.handler.HandleReconnect(client)
	}

	log.Printf("✅ player %d (%s) connected from %s", client.PlayerID, client.Name, clientIP)

	go client.ReadPump()
	go client.WritePump()
}

// takeSeat gives the connecting player their old seat back when token is
// known, here or from before a restart, and a new player id otherwise.
func (s *Server) takeSeat(ctx context.Context, token, name string) (presence.Seat, bool, error) {
	if seat, ok := s.seats.Reclaim(token); ok {
		return seat, true, nil
	}
	stored, err := s.store.LoadSeat(ctx, token)
	if err != nil {
		log.Printf("⚠️ failed to look up a reconnect token: %v", err)
	} else if stored != nil {
		if seat, ok := s.seats.Adopt(stored.PlayerID, token); ok {
			return seat, true, nil
		}
	}

	playerID, err := s.store.NextPlayerID(ctx)
	if err != nil {
		return presence.Seat{}, false, fmt.Errorf("allocate player id: %w", err)
	}
	name = sanitizeName(name)
	if name == "" {
		name = GenerateNickname()
	}
	seat := s.seats.Register(playerID, name)
	if err := s.store.SaveSeat(ctx, seat.Token, &storage.SeatData{PlayerID: playerID, Name: name}); err != nil {
		log.Printf("⚠️ failed to store the seat of player %d: %v", playerID, err)
	}
	return seat, false, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient adds client and returns the connection it replaces for the
// same player, if any.
func (s *Server) registerClient(client *Client) *Client {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	previous := s.byPlayer[client.PlayerID]
	s.clients[client.ID] = client
	s.byPlayer[client.PlayerID] = client
	s.seats.SetOnline(client.PlayerID)
	return previous
}

// settleSeat holds or frees the seat of a closed connection, unless a newer
// connection of the same player registered meanwhile.
func (s *Server) settleSeat(client *Client, held bool) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if current, ok := s.byPlayer[client.PlayerID]; ok && current != client {
		return
	}
	if held {
		s.seats.SetOffline(client.PlayerID)
	} else {
		s.seats.Remove(client.PlayerID)
	}
}

// superseded reports whether a newer connection took over client's player.
func (s *Server) superseded(client *Client) bool {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	current, ok := s.byPlayer[client.PlayerID]
	return ok && current != client
}

func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[client.ID]
	if ok {
		delete(s.clients, client.ID)
		if s.byPlayer[client.PlayerID] == client {
			delete(s.byPlayer, client.PlayerID)
		}
	}
	s.clientsMu.Unlock()

	if ok {
		log.Printf("❌ player %d (%s) disconnected", client.PlayerID, client.Name)
	}
	if client.onClose != nil {
		client.onClose()
	}
}

// GetClientByPlayerID returns the connection of a player, or nil.
func (s *Server) GetClientByPlayerID(playerID int) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.byPlayer[playerID]; ok {
		return c
	}
	return nil
}
