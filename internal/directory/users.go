package directory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

// UsersAPI is the REST slice the user directory uses.
type UsersAPI interface {
	GetAllUsers(ctx context.Context, pageNumber, pageSize int) (*models.PaginatedUsers, error)
}

// UserDirectory кешує одну сторінку списку користувачів.
type UserDirectory struct {
	api      UsersAPI
	pageSize int
	log      zerolog.Logger

	mu      sync.RWMutex
	users   []models.User
	page    int
	hasNext bool
}

func NewUserDirectory(api UsersAPI, pageSize int, log zerolog.Logger) *UserDirectory {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &UserDirectory{api: api, pageSize: pageSize, log: log, page: 1}
}

// Refresh reloads the first page. A failure keeps the cached page.
func (d *UserDirectory) Refresh(ctx context.Context) error {
	return d.load(ctx, 1)
}

// NextPage advances the cache by one page when the backend has more.
func (d *UserDirectory) NextPage(ctx context.Context) error {
	d.mu.RLock()
	page, hasNext := d.page, d.hasNext
	d.mu.RUnlock()
	if !hasNext {
		return nil
	}
	return d.load(ctx, page+1)
}

func (d *UserDirectory) load(ctx context.Context, page int) error {
	result, err := d.api.GetAllUsers(ctx, page, d.pageSize)
	if err != nil {
		d.log.Warn().Err(err).Int("page", page).Msg("users refresh failed, keeping cached list")
		return err
	}

	d.mu.Lock()
	d.users = result.Data
	d.page = result.PageNumber
	d.hasNext = result.HasNextPage
	d.mu.Unlock()
	return nil
}

// Users returns a copy of the cached page.
func (d *UserDirectory) Users() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.User, len(d.users))
	copy(out, d.users)
	return out
}

// Get looks a user up by id within the cached page.
func (d *UserDirectory) Get(userID string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == userID {
			return u, true
		}
	}
	return models.User{}, false
}
