package models

import "time"

// Room types as the backend encodes them.
const (
	RoomTypePrivate = 0
	RoomTypeGroup   = 1
)

// Room represents one conversation from GetAllRoomsByUserId.
// For private rooms the backend may leave RoomName/ImagePath empty; the
// directory fills DisplayName/DisplayImage from the other participant's
// user record when it can.
type Room struct {
	RoomID        string     `json:"roomId"`
	RoomName      string     `json:"roomName"`
	ImagePath     string     `json:"imagePath"`
	RoomType      int        `json:"roomType"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`

	DisplayName  string `json:"-"`
	DisplayImage string `json:"-"`
}

// Title is the name to render for the room in lists and prompts.
func (r *Room) Title() string {
	if r.RoomName != "" {
		return r.RoomName
	}
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return "Private chat"
}

// IsPrivate reports whether the room is a two-participant conversation.
func (r *Room) IsPrivate() bool {
	return r.RoomType == RoomTypePrivate
}
