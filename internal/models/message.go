package models

import "time"

// MessageType розрізняє вміст повідомлення.
const (
	MessageTypeText  = 0
	MessageTypeFile  = 1
	MessageTypeAudio = 2
)

// DeliveryStatus is local-only state for messages this client authored.
// Authoritative messages coming from the server carry StatusSent.
type DeliveryStatus string

const (
	StatusSending DeliveryStatus = "sending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

// FileMessage describes an attachment stored on the backend.
type FileMessage struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	FileSize int64  `json:"fileSize"`
}

// VoiceMessage describes an audio attachment.
type VoiceMessage struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	AudioFilePath   string  `json:"audioFilePath"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Message matches both GetAllMessagesByRoomId items and the hub's
// ReceiveMessage payload. TempID is the client-generated correlation token:
// it is sent with the outgoing payload and echoed back by the server so an
// optimistic entry can be replaced exactly, never matched by content.
type Message struct {
	ID               string        `json:"id"`
	RoomID           string        `json:"roomId"`
	UserID           string        `json:"userId"`
	UserName         string        `json:"userName"`
	UserProfileImage string        `json:"userProfileImage,omitempty"`
	MessageText      string        `json:"messageText"`
	MessageType      int           `json:"messageType"`
	IsEdited         bool          `json:"isEdited"`
	CreatedAt        time.Time     `json:"createdAt"`
	FileMessage      *FileMessage  `json:"fileMessage,omitempty"`
	VoiceMessage     *VoiceMessage `json:"voiceMessage,omitempty"`
	DisplayContent   string        `json:"displayContent"`
	TempID           string        `json:"tempId,omitempty"`

	// Status is never sent over the wire.
	Status DeliveryStatus `json:"-"`
}

// Display повертає текст для відображення (displayContent, якщо бекенд
// його заповнив, інакше сирий messageText).
func (m *Message) Display() string {
	if m.DisplayContent != "" {
		return m.DisplayContent
	}
	return m.MessageText
}
