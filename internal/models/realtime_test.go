package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHubMessage_CamelCase(t *testing.T) {
	raw := json.RawMessage(`{"id":"m1","roomId":"r1","userId":"u1","messageText":"hej","tempId":"tmp-1"}`)

	msg, err := DecodeHubMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "r1", msg.RoomID)
	assert.Equal(t, "tmp-1", msg.TempID)
	assert.Equal(t, StatusSent, msg.Status, "anything off the wire is authoritative")
}

func TestDecodeHubMessage_PascalCaseFallback(t *testing.T) {
	raw := json.RawMessage(`{"MessageId":"m1","RoomId":"r1","UserName":"Alice","MessageText":"hej","TempId":"tmp-1"}`)

	msg, err := DecodeHubMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID, "MessageId fills in when Id is absent")
	assert.Equal(t, "r1", msg.RoomID)
	assert.Equal(t, "Alice", msg.UserName)
	assert.Equal(t, "hej", msg.DisplayContent, "display content falls back to the text")
	assert.Equal(t, StatusSent, msg.Status)
}

func TestDecodeHubMessage_Malformed(t *testing.T) {
	_, err := DecodeHubMessage(json.RawMessage(`"just a string"`))
	assert.Error(t, err)
}

func TestNewHubFrame(t *testing.T) {
	frame, err := NewHubFrame(TargetSendMessageToRoom, SendPayload{
		RoomID:      "r1",
		MessageText: "hej",
		MessageType: MessageTypeText,
		TempID:      "tmp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, TargetSendMessageToRoom, frame.Target)
	require.Len(t, frame.Arguments, 1)
	assert.JSONEq(t, `{"RoomId":"r1","MessageText":"hej","MessageType":0,"TempId":"tmp-1"}`, string(frame.Arguments[0]))
}
