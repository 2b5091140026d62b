package client

import "sync"

// TokenPair is the credential pair persisted between calls.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenStore persists the current token pair. Implementations must be safe
// for concurrent use; the gateway reads and writes it from multiple goroutines.
type TokenStore interface {
	Tokens() *TokenPair
	SetTokens(t *TokenPair)
	ClearTokens()
}

// MemoryTokenStore keeps tokens in process memory. Suitable for CLIs, tests,
// and services; apps that must survive restarts should implement TokenStore
// over their own secure storage.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens *TokenPair
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Tokens() *TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

func (s *MemoryTokenStore) SetTokens(t *TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.tokens = nil
		return
	}
	cp := *t
	s.tokens = &cp
}

func (s *MemoryTokenStore) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
}
