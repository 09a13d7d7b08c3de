package kubecontext

import (
	"fmt"
	"sync"
)

// Store holds the selected cluster context for the lifetime of the
// process. Selection is an in-memory overlay only: it is passed
// explicitly on every cluster-facing tool invocation and never written
// back to the kubeconfig.
type Store interface {
	// Select records name as the active context, replacing any previous
	// selection. It rejects only the empty string; existence against the
	// live context list is the caller's concern.
	Select(name string) error
	// Current returns the selected context, or false if none is selected.
	Current() (string, bool)
	// Clear drops the selection.
	Clear()
}

// MemoryStore is the single-slot Store implementation.
type MemoryStore struct {
	mu       sync.Mutex
	name     string
	selected bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Select(name string) error {
	if name == "" {
		return fmt.Errorf("context name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.selected = true
	return nil
}

func (s *MemoryStore) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.selected
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = ""
	s.selected = false
}
