// pkg/memcache/seen_events.go
package mem

import (
	"sync"
	"time"
)

// SeenEventStore remembers gateway event ids that were already processed so
// webhook redeliveries can short-circuit before touching the database. The
// reconcile path stays idempotent without it; this only saves work.
type SeenEventStore interface {
	// MarkSeen records eventID for ttl. Returns false if the id was
	// already present and unexpired (i.e. this is a redelivery).
	MarkSeen(eventID string, ttl time.Duration) bool

	Seen(eventID string) bool
}

type seenEntry struct {
	expiresAt time.Time
}

type SeenEvents struct {
	mu   sync.Mutex
	data map[string]seenEntry
}

func NewSeenEvents() *SeenEvents {
	return &SeenEvents{
		data: make(map[string]seenEntry),
	}
}

func (s *SeenEvents) MarkSeen(eventID string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.data[eventID]; ok && now.Before(e.expiresAt) {
		return false
	}

	// opportunistic cleanup keeps the map from growing unbounded
	for id, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, id)
		}
	}

	s.data[eventID] = seenEntry{expiresAt: now.Add(ttl)}
	return true
}

func (s *SeenEvents) Seen(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[eventID]
	return ok && time.Now().Before(e.expiresAt)
}
