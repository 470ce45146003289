package session

import (
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// issueToken builds a token the way the backend does: HS256 with the
// ASP.NET identity claim URIs.
func issueToken(t *testing.T, userID, userName string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		claimNameIdentifier: userID,
		claimName:           userName,
		"exp":               exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "jwt_token"), zerolog.Nop())
}

func TestStore_NoCredential(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "", s.Token())
	assert.Equal(t, "", s.UserID(), "absent credential must read as logged out, not panic")
	assert.Equal(t, "", s.UserName())
	assert.True(t, s.Expired())

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestStore_SetTokenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt_token")
	s := NewStore(path, zerolog.Nop())

	token := issueToken(t, "user-1", "Alice", time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(token))

	// A fresh store over the same path sees the credential.
	reloaded := NewStore(path, zerolog.Nop())
	assert.Equal(t, token, reloaded.Token())
	assert.Equal(t, "user-1", reloaded.UserID())
	assert.Equal(t, "Alice", reloaded.UserName())
	assert.False(t, reloaded.Expired())
}

func TestStore_MalformedCredential(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetToken("not-a-jwt"))

	assert.Equal(t, "", s.UserID())
	assert.True(t, s.Expired(), "undecodable token counts as expired")

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestStore_ExpiredCredential(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetToken(issueToken(t, "user-1", "Alice", time.Now().Add(-time.Hour))))

	assert.True(t, s.Expired())
	assert.Equal(t, "user-1", s.UserID(), "identity still readable from an expired token")
}

func TestStore_ClearNotifiesSubscribers(t *testing.T) {
	s := newTestStore(t)

	var notified []string
	s.Subscribe(func(token string) {
		notified = append(notified, token)
	})

	token := issueToken(t, "user-1", "Alice", time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(token))
	s.Clear()
	s.Clear() // idempotent

	assert.Equal(t, []string{token, "", ""}, notified)
	assert.Equal(t, "", s.Token())
}
