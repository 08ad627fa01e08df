// Package codec builds, encodes and decodes protocol messages.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

var errEmptyType = errors.New("message has no type")

// NewMessage builds a message.
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := getMessage()
	msg.Type = msgType

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = raw
	}
	return msg, nil
}

// MustNewMessage is NewMessage that panics on error.
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode serializes a message for the wire.
func Encode(m *protocol.Message) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// drop the encoder's trailing newline and copy out of the pooled buffer
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return append([]byte(nil), out...), nil
}

// Decode parses a wire frame. Return the message with PutMessage when done.
func Decode(data []byte) (*protocol.Message, error) {
	msg := getMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errEmptyType
	}
	return msg, nil
}

// ParsePayload decodes the payload of msg into a T.
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage builds an error message with the standard text for code.
func NewErrorMessage(code int) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
	})
	return msg
}

// NewErrorMessageWithText builds an error message with custom text.
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}
