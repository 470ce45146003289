package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store тримає єдиний довговічний стан клієнта: JWT-токен.
// Токен лежить в одному файлі; все інше живе лише в пам'яті сесії.
type Store struct {
	path string
	log  zerolog.Logger

	mu    sync.RWMutex
	token string
	subs  []func(token string)
}

// NewStore loads any previously persisted credential from path. A missing
// or unreadable file just means "not logged in".
func NewStore(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, log: log}
	if data, err := os.ReadFile(path); err == nil {
		s.token = string(data)
	}
	return s
}

// Token returns the stored credential, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken persists a fresh credential and notifies subscribers.
func (s *Store) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
	return nil
}

// Clear drops the credential. Safe to call when already logged out.
func (s *Store) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Msg("remove credential file")
	}

	s.mu.Lock()
	s.token = ""
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn("")
	}
}

// Subscribe registers fn to run after every credential change.
func (s *Store) Subscribe(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Claims decodes the stored credential. ErrDecodeFailed when no usable
// credential is present.
func (s *Store) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrDecodeFailed
	}
	return decodeClaims(token)
}

// UserID returns the current user's id, empty when unauthenticated or the
// credential is malformed. Never errors: callers render "logged out".
func (s *Store) UserID() string {
	claims, err := s.Claims()
	if err != nil {
		return ""
	}
	return claims.UserID
}

// UserName mirrors UserID for the display name claim.
func (s *Store) UserName() string {
	claims, err := s.Claims()
	if err != nil {
		return ""
	}
	return claims.UserName
}

// Expired reports whether the credential is absent, unreadable or past its
// exp claim. An undecodable token counts as expired.
func (s *Store) Expired() bool {
	claims, err := s.Claims()
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().After(claims.ExpiresAt)
}
