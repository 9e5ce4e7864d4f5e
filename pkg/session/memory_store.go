package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// sweepInterval is the number of writes between full scans for expired entries.
const sweepInterval = 128

// MemoryStore keeps sessions in process memory. Expired entries are dropped on access and
// by a sweep that runs every sweepInterval writes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	writes  int
}

// NewMemoryStore constructs an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (s *MemoryStore) lookup(id string) (*memoryEntry, bool) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	return entry, true
}

// sweep removes every expired entry. Callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) upsert(id string, ttl time.Duration) *memoryEntry {
	s.writes++
	if s.writes >= sweepInterval {
		s.writes = 0
		s.sweep()
	}
	entry, ok := s.lookup(id)
	if !ok {
		entry = &memoryEntry{}
		s.entries[id] = entry
	}
	entry.expiresAt = s.now().Add(ttl)
	return entry
}

// Get returns a copy of the stored data.
func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	data := entry.data
	return &data, nil
}

// SetIdentity binds an instructor to the session.
func (s *MemoryStore) SetIdentity(_ context.Context, id string, identity Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(id, ttl).data.Identity = identity
	return nil
}

// SetFlash stores a one-shot message.
func (s *MemoryStore) SetFlash(_ context.Context, id string, kind FlashKind, message string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.upsert(id, ttl)
	switch kind {
	case FlashSuccess:
		entry.data.Flash.Success = message
	default:
		entry.data.Flash.Error = message
	}
	return nil
}

// TakeFlash returns pending messages and clears them under the same lock.
func (s *MemoryStore) TakeFlash(_ context.Context, id string) (Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookup(id)
	if !ok {
		return Flash{}, nil
	}
	flash := entry.data.Flash
	entry.data.Flash = Flash{}
	return flash, nil
}

// Len reports the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Destroy removes the session.
func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
