package chathub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dchat/client/internal/models"
)

func TestBuffer_OptimisticThenEcho_ReplacesInPlace(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")

	b.OnAuthoritative(models.Message{ID: "m1", RoomID: "room1", MessageText: "earlier"})
	tempID := b.AppendOptimistic("u1", "Alice", "hi")
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, models.StatusSending, b.Snapshot()[1].Status)

	applied := b.OnAuthoritative(models.Message{
		ID:          "srv-42",
		RoomID:      "room1",
		UserID:      "u1",
		MessageText: "hi",
		TempID:      tempID,
	})

	assert.True(t, applied)
	assert.Equal(t, 2, b.Len(), "echo must replace, never duplicate")

	got := b.Snapshot()[1]
	assert.Equal(t, "srv-42", got.ID, "replaced entry carries the server id")
	assert.Equal(t, models.StatusSent, got.Status)
}

func TestBuffer_UncorrelatedSameRoom_Appends(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")

	applied := b.OnAuthoritative(models.Message{ID: "m1", RoomID: "room1", MessageText: "yo"})

	assert.True(t, applied)
	assert.Equal(t, 1, b.Len())
}

func TestBuffer_ForeignRoom_NotApplied(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")
	b.OnAuthoritative(models.Message{ID: "m1", RoomID: "room1"})

	applied := b.OnAuthoritative(models.Message{ID: "m2", RoomID: "room2"})

	assert.False(t, applied)
	assert.Equal(t, 1, b.Len(), "foreign-room message must not touch the buffer")
}

func TestBuffer_NoActiveRoom_DropsEverything(t *testing.T) {
	b := NewBuffer()

	applied := b.OnAuthoritative(models.Message{ID: "m1", RoomID: "room1"})

	assert.False(t, applied)
	assert.Equal(t, 0, b.Len())
}

// Two identical texts in flight must resolve by temp id, not by content.
func TestBuffer_DuplicateTextsInFlight_ExactCorrelation(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")

	first := b.AppendOptimistic("u1", "Alice", "same text")
	second := b.AppendOptimistic("u1", "Alice", "same text")

	// Echo for the second send arrives first.
	b.OnAuthoritative(models.Message{ID: "srv-2", RoomID: "room1", MessageText: "same text", TempID: second})

	msgs := b.Snapshot()
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, first, msgs[0].ID, "first entry still optimistic")
	assert.Equal(t, models.StatusSending, msgs[0].Status)
	assert.Equal(t, "srv-2", msgs[1].ID, "second entry confirmed at its own index")
	assert.Equal(t, models.StatusSent, msgs[1].Status)
}

func TestBuffer_MarkFailed_InPlace(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")
	tempID := b.AppendOptimistic("u1", "Alice", "doomed")

	assert.True(t, b.MarkFailed(tempID))
	assert.False(t, b.MarkFailed(tempID), "already failed, nothing to flip")

	msgs := b.Snapshot()
	assert.Equal(t, 1, len(msgs), "failed entries stay visible")
	assert.Equal(t, models.StatusFailed, msgs[0].Status)
}

func TestBuffer_Reset_DiscardsAndRebinds(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")
	b.AppendOptimistic("u1", "Alice", "hi")

	b.Reset("room2")

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "room2", b.RoomID())
}

func TestBuffer_Load_KeepsPendingEntries(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")
	tempID := b.AppendOptimistic("u1", "Alice", "in flight")

	b.Load([]models.Message{
		{ID: "m1", RoomID: "room1"},
		{ID: "m2", RoomID: "room1"},
	})

	msgs := b.Snapshot()
	assert.Equal(t, 3, len(msgs))
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, models.StatusSent, msgs[0].Status)
	assert.Equal(t, tempID, msgs[2].TempID, "optimistic entry survives the history load")
}

func TestBuffer_SweepStale_DemotesOldSending(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")

	old := b.AppendOptimistic("u1", "Alice", "stuck")
	// Backdate the entry so the sweep sees it as stale.
	b.msgs[0].CreatedAt = time.Now().Add(-time.Minute)
	fresh := b.AppendOptimistic("u1", "Alice", "recent")

	demoted := b.SweepStale(time.Now().Add(-30 * time.Second))

	assert.Equal(t, []string{old}, demoted)
	msgs := b.Snapshot()
	assert.Equal(t, models.StatusFailed, msgs[0].Status)
	assert.Equal(t, models.StatusSending, msgs[1].Status)
	_ = fresh
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Reset("room1")
	b.AppendOptimistic("u1", "Alice", "hi")

	snap := b.Snapshot()
	snap[0].MessageText = "mutated"

	assert.Equal(t, "hi", b.Snapshot()[0].MessageText)
}
