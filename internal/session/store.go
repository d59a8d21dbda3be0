package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"cleanviz/internal/dataset"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrStoreFull = errors.New("too many active sessions")
)

// Store is an in-memory, TTL-evicted set of sessions.
type Store struct {
	cache       *gocache.Cache
	maxSessions int
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// Expired sessions are purged every cleanupInterval. maxSessions <= 0 means
// unlimited.
func NewStore(ttl, cleanupInterval time.Duration, maxSessions int) *Store {
	return &Store{
		cache:       gocache.New(ttl, cleanupInterval),
		maxSessions: maxSessions,
	}
}

// Create registers a new session for an uploaded table.
func (s *Store) Create(fileName string, format dataset.Format, t *dataset.Table) (*Session, error) {
	if s.maxSessions > 0 && s.cache.ItemCount() >= s.maxSessions {
		s.cache.DeleteExpired()
		if s.cache.ItemCount() >= s.maxSessions {
			return nil, ErrStoreFull
		}
	}
	sess := newSession(uuid.New().String(), fileName, format, t)
	s.cache.Set(sess.ID, sess, gocache.DefaultExpiration)
	return sess, nil
}

// Get returns the session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	val, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	sess := val.(*Session)
	// Replace fails if the entry expired or was deleted in between, which
	// leaves the returned session usable for this request only.
	_ = s.cache.Replace(id, sess, gocache.DefaultExpiration)
	return sess, nil
}

// Delete drops a session.
func (s *Store) Delete(id string) error {
	if _, found := s.cache.Get(id); !found {
		return ErrNotFound
	}
	s.cache.Delete(id)
	return nil
}

// Count is the number of live sessions, including expired entries that have
// not been purged yet.
func (s *Store) Count() int { return s.cache.ItemCount() }

// OnEvicted registers f to be called with the id of every session removed
// by expiry or Delete.
func (s *Store) OnEvicted(f func(id string)) {
	s.cache.OnEvicted(func(key string, _ interface{}) { f(key) })
}

// Flush removes every session.
func (s *Store) Flush() { s.cache.Flush() }
