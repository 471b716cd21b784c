package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenStore is the in-process TokenStore used when no Redis URL is
// configured and in tests. Tokens vanish on restart, which is acceptable for
// a single-node dev deployment.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]time.Time)}
}

// Save stores the token until its TTL elapses.
func (s *MemoryTokenStore) Save(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now().Add(ttl)
	return nil
}

// Exists reports whether the token is present and unexpired, pruning it when
// expired.
func (s *MemoryTokenStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.tokens, token)
		return false, nil
	}
	return true, nil
}
