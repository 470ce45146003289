package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

// RoomsAPI is the REST slice the room directory uses.
type RoomsAPI interface {
	GetUserRooms(ctx context.Context) ([]models.Room, error)
}

// RoomDirectory is the cached rooms list. Refreshed on view mount and on
// explicit signals (private room created, reconnect); a failed refresh
// keeps the previous list.
//
// The backend does not inline the other participant of a private room, so
// bare private rooms come back nameless. The directory keeps an overlay of
// roomID -> other participant id (learned from CreatePrivateRoom) and
// resolves display names from user records.
type RoomDirectory struct {
	api RoomsAPI
	log zerolog.Logger

	mu      sync.RWMutex
	rooms   []models.Room
	members map[string]string // private roomID -> other participant's user id
}

func NewRoomDirectory(api RoomsAPI, log zerolog.Logger) *RoomDirectory {
	return &RoomDirectory{
		api:     api,
		log:     log,
		members: make(map[string]string),
	}
}

// Refresh reloads the list from the backend. On failure the cached list
// survives and the error is returned for the caller to surface or ignore.
func (d *RoomDirectory) Refresh(ctx context.Context) error {
	rooms, err := d.api.GetUserRooms(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("rooms refresh failed, keeping cached list")
		return err
	}

	d.mu.Lock()
	d.rooms = rooms
	d.mu.Unlock()
	return nil
}

// Rooms returns a copy of the cached list, most recent activity first.
func (d *RoomDirectory) Rooms() []models.Room {
	d.mu.RLock()
	out := make([]models.Room, len(d.rooms))
	copy(out, d.rooms)
	d.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

// Get looks a room up by id.
func (d *RoomDirectory) Get(roomID string) (models.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.rooms {
		if r.RoomID == roomID {
			return r, true
		}
	}
	return models.Room{}, false
}

// Touch bumps a room's lastMessageAt. Fed by messages arriving for
// non-active rooms; timestamps never move backwards.
func (d *RoomDirectory) Touch(roomID string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.rooms {
		if d.rooms[i].RoomID != roomID {
			continue
		}
		if d.rooms[i].LastMessageAt == nil || at.After(*d.rooms[i].LastMessageAt) {
			t := at
			d.rooms[i].LastMessageAt = &t
		}
		return
	}
}

// RememberMember records the other participant of a private room, as
// reported by CreatePrivateRoom.
func (d *RoomDirectory) RememberMember(roomID, userID string) {
	d.mu.Lock()
	d.members[roomID] = userID
	d.mu.Unlock()
}

// ResolvePrivateNames fills DisplayName/DisplayImage for nameless private
// rooms from the given user records, where the participant is known.
func (d *RoomDirectory) ResolvePrivateNames(users []models.User) {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.rooms {
		r := &d.rooms[i]
		if !r.IsPrivate() || r.RoomName != "" {
			continue
		}
		memberID, ok := d.members[r.RoomID]
		if !ok {
			continue
		}
		if u, ok := byID[memberID]; ok {
			r.DisplayName = u.Name
			r.DisplayImage = u.ImagePath
		}
	}
}
