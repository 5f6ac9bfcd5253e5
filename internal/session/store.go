// Package session provides a string key/value store for session-scoped UI
// state (restored table pages, selected channels) with JSON persistence.
// Missing or malformed persisted data is treated as an empty session.
package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// Store holds session values in memory and mirrors them to a JSON file.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	filePath string
	log      *slog.Logger
}

// NewStore creates a Store, loading persisted state from filePath. An empty
// filePath makes the store memory-only.
func NewStore(filePath string, log *slog.Logger) *Store {
	s := &Store{
		values:   make(map[string]string),
		filePath: filePath,
		log:      log,
	}
	s.load()
	return s
}

// Get returns the value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and persists to disk.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.flush()
	s.mu.Unlock()
}

// Clear removes a value and persists to disk.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.flush()
	s.mu.Unlock()
}

// Snapshot returns a copy of all session values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// load reads the JSON file into memory.
func (s *Store) load() {
	if s.filePath == "" {
		return
	}
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return // File doesn't exist yet — start empty.
	}
	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warn("loading session file", "error", err)
		return
	}
	s.values = loaded
	s.log.Info("loaded session state", "keys", len(loaded))
}

// flush writes the in-memory state to disk. Must be called with mu held.
func (s *Store) flush() {
	if s.filePath == "" {
		return
	}
	data, err := json.Marshal(s.values)
	if err != nil {
		s.log.Error("marshalling session state", "error", err)
		return
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		s.log.Error("writing session file", "error", err)
	}
}
