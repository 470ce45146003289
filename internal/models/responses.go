package models

import (
	"encoding/json"
	"time"
)

// Envelope is the backend's uniform response wrapper. Data stays raw until
// the caller knows the concrete payload type.
type Envelope struct {
	Data            json.RawMessage `json:"data"`
	Message         string          `json:"message"`
	InternalMessage string          `json:"internalMessage"`
	Status          int             `json:"status"`
}

// PaginatedUsers is the payload of AppUser/GetAllUsers.
type PaginatedUsers struct {
	Data            []User `json:"data"`
	TotalCount      int    `json:"totalCount"`
	PageNumber      int    `json:"pageNumber"`
	PageSize        int    `json:"pageSize"`
	TotalPages      int    `json:"totalPages"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// MessageHistory is the payload of Message/GetAllMessagesByRoomId.
type MessageHistory struct {
	Messages   []Message `json:"messages"`
	TotalCount int       `json:"totalCount"`
	HasMore    bool      `json:"hasMore"`
}

// LoginData is the payload of Auth/Login.
type LoginData struct {
	Token      string    `json:"token"`
	ExpireDate time.Time `json:"expireDate"`
}

// CreatedRoom is the payload of Room/CreatePrivateRoom. Earlier revisions
// of the backend returned a bare boolean here; the room descriptor is the
// contract this client relies on so a fresh private room can be selected
// without rescanning the rooms list.
type CreatedRoom struct {
	RoomID      string    `json:"roomId"`
	MemberName  string    `json:"memberName"`
	LastUpdated time.Time `json:"lastUpdated"`
}
