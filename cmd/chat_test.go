package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dchat/client/internal/models"
)

func threadMsg(id, tempID, text string, status models.DeliveryStatus) models.Message {
	return models.Message{
		ID:          id,
		TempID:      tempID,
		UserID:      "me",
		UserName:    "Me",
		MessageText: text,
		CreatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Status:      status,
	}
}

func renderedLines(out *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestThreadView_StatusChangeIsReRendered(t *testing.T) {
	var out bytes.Buffer
	v := newThreadView(&out, "me")

	// Optimistic entry first.
	v.render([]models.Message{threadMsg("tmp-1", "tmp-1", "hi", models.StatusSending)})
	lines := renderedLines(&out)
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "…")

	// Echo replaced it in place; same buffer length, new status.
	v.render([]models.Message{threadMsg("srv-1", "tmp-1", "hi", models.StatusSent)})
	lines = renderedLines(&out)
	assert.Len(t, lines, 2, "confirmation must be shown, not swallowed")
	assert.NotContains(t, lines[1], "…")
	assert.NotContains(t, lines[1], "failed")

	// Unchanged snapshot renders nothing new.
	v.render([]models.Message{threadMsg("srv-1", "tmp-1", "hi", models.StatusSent)})
	assert.Len(t, renderedLines(&out), 2)
}

func TestThreadView_FailureMarkIsReRendered(t *testing.T) {
	var out bytes.Buffer
	v := newThreadView(&out, "me")

	v.render([]models.Message{threadMsg("tmp-1", "tmp-1", "doomed", models.StatusSending)})
	v.render([]models.Message{threadMsg("tmp-1", "tmp-1", "doomed", models.StatusFailed)})

	lines := renderedLines(&out)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "(failed)")
}

func TestThreadView_NewMessagesAppend(t *testing.T) {
	var out bytes.Buffer
	v := newThreadView(&out, "me")

	v.render([]models.Message{threadMsg("m1", "", "one", models.StatusSent)})
	v.render([]models.Message{
		threadMsg("m1", "", "one", models.StatusSent),
		threadMsg("m2", "", "two", models.StatusSent),
	})

	lines := renderedLines(&out)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "two")
}

func TestThreadView_RoomSwitchRestarts(t *testing.T) {
	var out bytes.Buffer
	v := newThreadView(&out, "me")

	v.render([]models.Message{
		threadMsg("m1", "", "one", models.StatusSent),
		threadMsg("m2", "", "two", models.StatusSent),
	})

	// Shorter snapshot means the buffer was rebound to another room.
	v.render([]models.Message{threadMsg("m9", "", "elsewhere", models.StatusSent)})

	lines := renderedLines(&out)
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "elsewhere")
}
