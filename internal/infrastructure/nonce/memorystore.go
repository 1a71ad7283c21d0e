package nonce

import (
	"context"
	"sync"
	"time"

	"github.com/openfun/ashley-sub000/internal/domain/lti"
)

var _ lti.NonceStore = (*MemoryStore)(nil)

// MemoryStore is the single-process fallback used in tests and deployments
// without Redis. Expired entries are swept lazily on write.
type MemoryStore struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
	lastGC  time.Time
	gcEvery time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		seen:    make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
		gcEvery: time.Minute,
	}
}

func (s *MemoryStore) CheckAndStore(ctx context.Context, consumerKey, timestamp, nonce string) (bool, error) {
	key := consumerKey + ":" + timestamp + ":" + nonce
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastGC) > s.gcEvery {
		for k, expiry := range s.seen {
			if now.After(expiry) {
				delete(s.seen, k)
			}
		}
		s.lastGC = now
	}

	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}

	s.seen[key] = now.Add(s.ttl)
	return true, nil
}
