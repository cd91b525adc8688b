package pending

import (
	"errors"
	"sync"
	"time"

	"notary-backend/internal/model"
)

// ErrNoPendingUpload covers both a missing entry and an entry staged by a
// different user; callers must not be able to tell the two apart
var ErrNoPendingUpload = errors.New("no pending upload for this id hash")

type entry struct {
	upload   model.PendingUpload
	stagedAt time.Time
}

// Store holds uploads between the prepare and commit phases, keyed by the
// hex encoded id hash. Entries are process local and expire after ttl.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewStore creates a store evicting entries older than ttl. A ttl of zero
// disables eviction (used in tests).
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	if ttl > 0 {
		go s.janitor()
	}

	return s
}

// Put stages an upload; a repeated prepare for the same id hash overwrites
func (s *Store) Put(idHash string, upload model.PendingUpload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[idHash] = entry{upload: upload, stagedAt: time.Now()}
}

// Take removes and returns the entry for idHash if it was staged by userID.
// Check and removal happen atomically; of two concurrent commits for the same
// entry only one can succeed. An entry staged by another user stays in place.
func (s *Store) Take(idHash, userID string) (model.PendingUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[idHash]
	if !ok || e.upload.UserID != userID {
		return model.PendingUpload{}, ErrNoPendingUpload
	}

	delete(s.entries, idHash)
	return e.upload, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Close stops the eviction goroutine
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	for idHash, e := range s.entries {
		if e.stagedAt.Before(cutoff) {
			delete(s.entries, idHash)
		}
	}
}
