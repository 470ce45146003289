package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Hub event and invocation names. Events arrive from the server, targets
// are invoked on it.
const (
	EventReceiveMessage = "ReceiveMessage"
	EventUserJoined     = "UserJoined"
	EventUserLeft       = "UserLeft"

	TargetJoinRoom          = "JoinRoom"
	TargetLeaveRoom         = "LeaveRoom"
	TargetSendMessageToRoom = "SendMessageToRoom"
)

// HubFrame is one message on the push channel, in both directions.
type HubFrame struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// NewHubFrame marshals the arguments into a frame for Target.
func NewHubFrame(target string, args ...any) (HubFrame, error) {
	frame := HubFrame{Target: target}
	for _, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return HubFrame{}, fmt.Errorf("encode hub argument for %s: %w", target, err)
		}
		frame.Arguments = append(frame.Arguments, raw)
	}
	return frame, nil
}

// SendPayload is the argument of SendMessageToRoom and the form body of the
// REST SendMessage endpoint. TempID travels to the server and comes back on
// the broadcast echo.
type SendPayload struct {
	RoomID      string `json:"RoomId"`
	MessageText string `json:"MessageText"`
	MessageType int    `json:"MessageType"`
	TempID      string `json:"TempId,omitempty"`
}

// pascalMessage covers the broadcast payloads some backend revisions emit
// with PascalCase keys.
type pascalMessage struct {
	ID             string    `json:"Id"`
	MessageID      string    `json:"MessageId"`
	RoomID         string    `json:"RoomId"`
	UserID         string    `json:"UserId"`
	UserName       string    `json:"UserName"`
	MessageText    string    `json:"MessageText"`
	MessageType    int       `json:"MessageType"`
	DisplayContent string    `json:"DisplayContent"`
	CreatedAt      time.Time `json:"CreatedAt"`
	TempID         string    `json:"TempId"`
}

// DecodeHubMessage maps a raw ReceiveMessage argument to a Message,
// tolerating both camelCase and PascalCase key styles.
func DecodeHubMessage(raw json.RawMessage) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("decode hub message: %w", err)
	}
	if msg.ID != "" || msg.RoomID != "" {
		msg.Status = StatusSent
		return msg, nil
	}

	var p pascalMessage
	if err := json.Unmarshal(raw, &p); err != nil {
		return Message{}, fmt.Errorf("decode hub message: %w", err)
	}
	msg = Message{
		ID:             p.ID,
		RoomID:         p.RoomID,
		UserID:         p.UserID,
		UserName:       p.UserName,
		MessageText:    p.MessageText,
		MessageType:    p.MessageType,
		DisplayContent: p.DisplayContent,
		CreatedAt:      p.CreatedAt,
		TempID:         p.TempID,
		Status:         StatusSent,
	}
	if msg.ID == "" {
		msg.ID = p.MessageID
	}
	if msg.DisplayContent == "" {
		msg.DisplayContent = p.MessageText
	}
	return msg, nil
}
