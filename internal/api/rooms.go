package api

import (
	"context"

	"dchat/client/internal/models"
)

// GetUserRooms fetches every room the current user belongs to.
func (c *Client) GetUserRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.get(ctx, "/Room/GetAllRoomsByUserId", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

type createRoomRequest struct {
	UserID string `json:"userId"`
}

// CreatePrivateRoom opens (or returns the already existing) private room
// with the given user.
func (c *Client) CreatePrivateRoom(ctx context.Context, userID string) (*models.CreatedRoom, error) {
	var created models.CreatedRoom
	err := c.postJSON(ctx, "/Room/CreatePrivateRoom", createRoomRequest{UserID: userID}, true, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
