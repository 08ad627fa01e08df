package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(protocol.MsgPing, nil)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPing, msg.Type)
	assert.Nil(t, msg.Payload)

	msg, err = NewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: 7, Password: "pw"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"game_id":7,"password":"pw"}`, string(msg.Payload))

	_, err = NewMessage(protocol.MsgPing, func() {})
	assert.Error(t, err, "functions cannot be marshaled")
}

func TestMustNewMessage_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNewMessage(protocol.MsgPing, make(chan int))
	})
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgDiscardCard, protocol.CardPayload{CardID: 42})
	data, err := Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"discard_card","payload":{"card_id":42}}`, string(data))
	assert.NotEqual(t, byte('\n'), data[len(data)-1])

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgDiscardCard, decoded.Type)

	payload, err := ParsePayload[protocol.CardPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, 42, payload.CardID)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err, "a message needs a type")
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	empty := &protocol.Message{Type: protocol.MsgStartGame}
	start, err := ParsePayload[protocol.StartGamePayload](empty)
	require.NoError(t, err)
	assert.False(t, start.Variant, "a missing payload decodes to the zero value")

	bad := &protocol.Message{Type: protocol.MsgJoinGame, Payload: []byte(`{"game_id":"seven"}`)}
	_, err = ParsePayload[protocol.JoinGamePayload](bad)
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeNotYourTurn)
	require.NotNil(t, msg)
	assert.Equal(t, protocol.MsgError, msg.Type)

	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNotYourTurn, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeNotYourTurn], payload.Message)

	msg = NewErrorMessageWithText(protocol.ErrCodeUnknown, "game closed")
	payload, err = ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "game closed", payload.Message)
}
