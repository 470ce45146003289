package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"

	"dchat/client/internal/models"
)

// GetRoomMessages fetches the message history for one room.
func (c *Client) GetRoomMessages(ctx context.Context, roomID string) (*models.MessageHistory, error) {
	query := url.Values{}
	query.Set("RoomId", roomID)

	var history models.MessageHistory
	if err := c.get(ctx, "/Message/GetAllMessagesByRoomId", query, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// SendMessage posts a message over REST. Text messages normally travel over
// the hub; this path carries file and audio messages, which need multipart.
// filePath/audioPath are optional and mutually exclusive in practice.
func (c *Client) SendMessage(ctx context.Context, payload models.SendPayload, filePath, audioPath string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("RoomId", payload.RoomID)
	_ = w.WriteField("MessageText", payload.MessageText)
	_ = w.WriteField("MessageType", strconv.Itoa(payload.MessageType))
	if payload.TempID != "" {
		_ = w.WriteField("TempId", payload.TempID)
	}
	if filePath != "" {
		if err := attachFile(w, "File", filePath); err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}
	if audioPath != "" {
		if err := attachFile(w, "AudioFile", audioPath); err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var accepted bool
	if err := c.postMultipart(ctx, "/Message/SendMessage", w.FormDataContentType(), &buf, &accepted); err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("%w: message rejected", ErrRequestFailed)
	}
	return nil
}
