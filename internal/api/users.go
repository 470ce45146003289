package api

import (
	"context"
	"net/url"
	"strconv"

	"dchat/client/internal/models"
)

// GetAllUsers fetches one page of the user directory.
func (c *Client) GetAllUsers(ctx context.Context, pageNumber, pageSize int) (*models.PaginatedUsers, error) {
	query := url.Values{}
	query.Set("pageNumber", strconv.Itoa(pageNumber))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var page models.PaginatedUsers
	if err := c.get(ctx, "/AppUser/GetAllUsers", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
