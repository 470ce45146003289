package chathub

import (
	"time"

	"github.com/google/uuid"

	"dchat/client/internal/models"
)

// Buffer holds the ordered message sequence for the active room, and only
// for it. Optimistic local entries live next to authoritative ones; the
// tempId correlation replaces them in place so a confirmed message never
// changes position. The buffer is mutated from the manager loop only and
// needs no locking; readers get copies via Snapshot.
type Buffer struct {
	roomID string
	msgs   []models.Message
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// RoomID returns the room the buffer currently belongs to.
func (b *Buffer) RoomID() string {
	return b.roomID
}

// Reset discards all content and rebinds the buffer to roomID. Called on
// every room switch; history is not persisted client side.
func (b *Buffer) Reset(roomID string) {
	b.roomID = roomID
	b.msgs = nil
}

// Load installs the fetched history, keeping any optimistic entries that
// were appended while the fetch was in flight.
func (b *Buffer) Load(history []models.Message) {
	pending := make([]models.Message, 0)
	for _, m := range b.msgs {
		if m.Status == models.StatusSending || m.Status == models.StatusFailed {
			pending = append(pending, m)
		}
	}

	b.msgs = make([]models.Message, 0, len(history)+len(pending))
	for _, m := range history {
		if m.Status == "" {
			m.Status = models.StatusSent
		}
		b.msgs = append(b.msgs, m)
	}
	b.msgs = append(b.msgs, pending...)
}

// AppendOptimistic adds a locally authored message with status "sending"
// and returns the temp id used for correlation. The temp id doubles as the
// message id until the authoritative echo replaces it.
func (b *Buffer) AppendOptimistic(userID, userName, text string) string {
	tempID := uuid.New().String()
	b.msgs = append(b.msgs, models.Message{
		ID:             tempID,
		TempID:         tempID,
		RoomID:         b.roomID,
		UserID:         userID,
		UserName:       userName,
		MessageText:    text,
		MessageType:    models.MessageTypeText,
		DisplayContent: text,
		CreatedAt:      time.Now(),
		Status:         models.StatusSending,
	})
	return tempID
}

// OnAuthoritative applies a server-confirmed message. Correlation match
// replaces the optimistic entry at its original index; an uncorrelated
// message for the active room is appended; anything else is not applied
// and the caller may still use it to bump the room directory.
func (b *Buffer) OnAuthoritative(msg models.Message) bool {
	msg.Status = models.StatusSent

	if msg.TempID != "" {
		for i := range b.msgs {
			if b.msgs[i].TempID == msg.TempID && b.msgs[i].Status != models.StatusSent {
				b.msgs[i] = msg
				return true
			}
		}
	}

	if b.roomID == "" || msg.RoomID != b.roomID {
		return false
	}
	b.msgs = append(b.msgs, msg)
	return true
}

// MarkFailed flips a pending entry to "failed" in place. The entry stays
// visible so the user can see what did not go through.
func (b *Buffer) MarkFailed(tempID string) bool {
	for i := range b.msgs {
		if b.msgs[i].TempID == tempID && b.msgs[i].Status == models.StatusSending {
			b.msgs[i].Status = models.StatusFailed
			return true
		}
	}
	return false
}

// SweepStale demotes "sending" entries created before cutoff to "failed"
// and returns their temp ids. Covers the echo-never-arrives case.
func (b *Buffer) SweepStale(cutoff time.Time) []string {
	var demoted []string
	for i := range b.msgs {
		if b.msgs[i].Status == models.StatusSending && b.msgs[i].CreatedAt.Before(cutoff) {
			b.msgs[i].Status = models.StatusFailed
			demoted = append(demoted, b.msgs[i].TempID)
		}
	}
	return demoted
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	return len(b.msgs)
}

// Snapshot returns a copy safe to hand to a rendering layer.
func (b *Buffer) Snapshot() []models.Message {
	out := make([]models.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}
