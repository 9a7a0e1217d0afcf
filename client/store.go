// Package client holds what a Go consumer of the talenthub API needs to carry
// its credential: a token store with an in-memory fallback, an http.RoundTripper
// that attaches the Authorization header, and an unverified decode of the token
// payload for display.
//
// Nothing here verifies a token. Authorization is decided by the server.
package client

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists a single token.
type Store interface {
	Save(token string) error
	Get() (string, bool)
	Remove() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// tokenFileName is the file FileStore writes under its directory.
const tokenFileName = "token"

// FileStore keeps the token in a file readable only by the current user.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to dir/token.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, tokenFileName)}
}

func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (f *FileStore) Get() (string, bool) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(b))
	return token, token != ""
}

func (f *FileStore) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// TokenStore writes to a durable primary store and falls back to memory when
// the primary fails.
type TokenStore struct {
	primary  Store
	fallback Store

	mu sync.Mutex
	// inFallback is set while the current token lives only in the fallback.
	inFallback bool
}

// NewTokenStore creates a TokenStore. A nil fallback means a fresh MemoryStore.
func NewTokenStore(primary, fallback Store) *TokenStore {
	if fallback == nil {
		fallback = &MemoryStore{}
	}
	return &TokenStore{primary: primary, fallback: fallback}
}

// Save writes the primary, or the fallback if the primary fails. A failed
// primary save also clears whatever the primary held, and Get reads the
// fallback first until the next successful primary save.
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.primary.Save(token)
	if err == nil {
		s.inFallback = false
		return s.fallback.Remove()
	}
	log.Printf("token store: primary save failed, keeping token in memory: %v", err)
	if rmErr := s.primary.Remove(); rmErr != nil {
		log.Printf("token store: could not clear the previous token: %v", rmErr)
	}
	s.inFallback = true
	return s.fallback.Save(token)
}

// Get reads the store that received the last save, then the other one.
func (s *TokenStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	first, second := s.primary, s.fallback
	if s.inFallback {
		first, second = s.fallback, s.primary
	}
	if t, ok := first.Get(); ok {
		return t, true
	}
	return second.Get()
}

// Remove clears both stores.
func (s *TokenStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFallback = false
	return errors.Join(s.primary.Remove(), s.fallback.Remove())
}

// AuthHeader returns the Authorization header value for the stored token.
func (s *TokenStore) AuthHeader() (string, bool) {
	t, ok := s.Get()
	if !ok {
		return "", false
	}
	return "Bearer " + t, true
}
