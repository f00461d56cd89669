package config

import (
	"fmt"
	"sync"
)

// Store holds the resolved feed sources for the lifetime of the process.
// Read concurrently by the scheduler and the HTTP handlers.
type Store struct {
	sources map[string]Source
	order   []string
	mu      sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		sources: make(map[string]Source),
	}
}

func (s *Store) Add(sources ...Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range sources {
		if _, ok := s.sources[src.Name]; ok {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		s.sources[src.Name] = src
		s.order = append(s.order, src.Name)
	}
	return nil
}

func (s *Store) Get(name string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[name]
	return src, ok
}

// GetAll returns the sources in registration order.
func (s *Store) GetAll() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Source, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.sources[name])
	}
	return out
}

// GetEnabled returns the sources that are not disabled, in registration order.
func (s *Store) GetEnabled() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Source, 0, len(s.order))
	for _, name := range s.order {
		if src := s.sources[name]; !src.Disabled {
			out = append(out, src)
		}
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sources)
}
