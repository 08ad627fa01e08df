package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/logger"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	// strikes before a flooding client is dropped
	maxRateWarnings = 5
)

// Client is one websocket connection and the player behind it.
type Client struct {
	ID       string // connection id
	PlayerID int
	Name     string
	IP       string

	server  *Server
	conn    *websocket.Conn
	send    chan []byte
	onClose func() // releases the connection slot

	mu     sync.RWMutex
	gameID int
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(s *Server, conn *websocket.Conn, playerID int, name string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		PlayerID: playerID,
		Name:     name,
		server:   s,
		conn:     conn,
		send:     make(chan []byte, 256),
	}
}

// ReadPump reads frames until the connection drops, then leaves the
// player's game.
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("read error from player %d: %v", c.PlayerID, err)
			}
			return
		}

		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.GetWarningCount(c.ID) > maxRateWarnings {
				log.Printf("🚫 player %d (IP %s) dropped for flooding", c.PlayerID, c.IP)
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "slow down"))
		}

		msg, err := codec.Decode(data)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}
		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues msg. A client whose queue is full is disconnected.
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("failed to encode %s: %v", msg.Type, err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("send queue of player %d is full, closing", c.PlayerID)
		go c.Close()
	}
}

// handleDisconnect runs once the connection is gone. A player of a running
// game keeps their seat for the reconnect timeout, anyone else leaves at once.
// Nothing is given up while the server shuts down, so games stay stored for
// the next start, nor when a newer connection already took over.
func (c *Client) handleDisconnect() {
	if !c.server.stopping() && !c.server.superseded(c) {
		held := c.server.handler.HandleDrop(c)
		c.server.settleSeat(c, held)
	}
	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.unregisterClient(c)
}

// Close stops the write pump.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) GetID() string    { return c.ID }
func (c *Client) GetPlayerID() int { return c.PlayerID }
func (c *Client) GetName() string  { return c.Name }

func (c *Client) GetGame() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Client) SetGame(gameID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}
