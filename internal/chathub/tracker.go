package chathub

import (
	"sync"

	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

// Invoker is the slice of the hub connection the tracker needs.
type Invoker interface {
	State() ConnState
	Invoke(target string, args ...any) error
}

// Tracker maps the single active room onto hub group membership. Exactly
// one room is active per session; switching always leaves the previous
// group before joining the next so the client is never in both.
//
// Join/leave issued while the connection is down are not dropped: the
// desired room is remembered and JoinRoom is replayed on the next
// Connected transition (Resubscribe), which also covers reconnects.
//
// Mutation happens on the manager loop only, but Active is also read from
// the prompt goroutine, so the room field is mutex-guarded.
type Tracker struct {
	invoker Invoker
	log     zerolog.Logger

	mu     sync.RWMutex
	active string
}

func NewTracker(invoker Invoker, log zerolog.Logger) *Tracker {
	return &Tracker{invoker: invoker, log: log}
}

// Active returns the currently active room id, empty when none. Safe from
// any goroutine.
func (t *Tracker) Active() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// SetActiveRoom switches the active room. Selecting the already active
// room is a no-op. An empty roomID deselects.
func (t *Tracker) SetActiveRoom(roomID string) {
	t.mu.Lock()
	if roomID == t.active {
		t.mu.Unlock()
		return
	}
	prev := t.active
	t.active = roomID
	t.mu.Unlock()

	if t.invoker.State() != StateConnected {
		// Replayed by Resubscribe once the connection comes up.
		t.log.Debug().Str("room", roomID).Msg("room switch queued until connected")
		return
	}

	if prev != "" {
		if err := t.invoker.Invoke(models.TargetLeaveRoom, prev); err != nil {
			t.log.Warn().Err(err).Str("room", prev).Msg("leave room failed")
		}
	}
	if roomID != "" {
		if err := t.invoker.Invoke(models.TargetJoinRoom, roomID); err != nil {
			t.log.Warn().Err(err).Str("room", roomID).Msg("join room failed")
		}
	}
}

// Resubscribe re-issues JoinRoom for the active room. Called on every
// transition to Connected: first connect, reconnect, and the flush of a
// switch queued while offline.
func (t *Tracker) Resubscribe() {
	active := t.Active()
	if active == "" {
		return
	}
	if err := t.invoker.Invoke(models.TargetJoinRoom, active); err != nil {
		t.log.Warn().Err(err).Str("room", active).Msg("rejoin room failed")
	}
}
