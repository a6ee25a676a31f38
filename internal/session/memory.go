package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// cacheEntry is a cached session with expiration
type cacheEntry struct {
	id        string
	state     State
	expiresAt time.Time
}

// MemoryStore is a thread-safe LRU session store with TTL. Sessions are lost
// on restart and are not shared between processes.
type MemoryStore struct {
	mu           sync.Mutex
	capacity     int
	ttl          time.Duration
	items        map[string]*list.Element
	evictionList *list.List
	now          func() time.Time
}

// NewMemoryStore creates a store holding at most capacity sessions, each
// expiring ttl after its last save.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		capacity:     capacity,
		ttl:          ttl,
		items:        make(map[string]*list.Element, capacity),
		evictionList: list.New(),
		now:          time.Now,
	}
}

// Get retrieves a session's state
func (s *MemoryStore) Get(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, found := s.items[id]
	if !found {
		return State{}, ErrSessionNotFound
	}

	entry := elem.Value.(*cacheEntry)
	if s.now().After(entry.expiresAt) {
		s.removeElement(elem)
		return State{}, ErrSessionNotFound
	}

	s.evictionList.MoveToFront(elem)
	return entry.state, nil
}

// Save adds or updates a session
func (s *MemoryStore) Save(ctx context.Context, id string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)

	if elem, found := s.items[id]; found {
		s.evictionList.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.state = state
		entry.expiresAt = expiresAt
		return nil
	}

	elem := s.evictionList.PushFront(&cacheEntry{
		id:        id,
		state:     state,
		expiresAt: expiresAt,
	})
	s.items[id] = elem

	// Evict oldest if over capacity
	if s.evictionList.Len() > s.capacity {
		s.removeOldest()
	}
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, found := s.items[id]; found {
		s.removeElement(elem)
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the current number of sessions, expired ones included until
// they are touched or cleaned up.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.evictionList.Len()
}

// CleanupExpired removes all expired sessions and returns how many were dropped.
func (s *MemoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	// Iterate from back (oldest) to front
	var next *list.Element
	for elem := s.evictionList.Back(); elem != nil; elem = next {
		next = elem.Prev()
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			s.removeElement(elem)
			removed++
		}
	}

	return removed
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

func (s *MemoryStore) removeOldest() {
	if elem := s.evictionList.Back(); elem != nil {
		s.removeElement(elem)
	}
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	s.evictionList.Remove(elem)
	delete(s.items, elem.Value.(*cacheEntry).id)
}
