package handler

import (
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/types"
)

// handlePing answers a heartbeat.
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

func (h *Handler) handleGetOnlineCount(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{
		Count: h.server.GetOnlineCount(),
	}))
}
