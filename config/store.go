package config

import (
	"sync"

	"github.com/openbar/barbot/core/model"
)

// Store is the configuration boundary: it owns configuration truth, hands
// out immutable snapshots for resolution and dispensing, and persists
// updates. Axis truth lives in the turret controller and is never merged in
// here.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  *Config
}

// NewStore loads the configuration file into a Store.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// NewStoreWith wraps an already loaded configuration, for tests and one-shot
// commands.
func NewStoreWith(path string, cfg *Config) *Store {
	return &Store{path: path, cfg: cfg}
}

// Config returns the loaded configuration. Only the Bar section ever
// changes after load, and only through UpdateBar; the other sections are
// read-only wiring input.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Snapshot returns an immutable copy of the bottle configuration. Each
// Resolve or Make call works on its own snapshot, so an edit mid-job cannot
// change an in-flight physical action.
func (s *Store) Snapshot() model.BarConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Bar.Snapshot()
}

// Bar returns a copy of the persisted bottle configuration.
func (s *Store) Bar() Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.cfg.Bar
	b.Slots = append([]string(nil), s.cfg.Bar.Slots...)
	b.Pantry = append([]string(nil), s.cfg.Bar.Pantry...)
	subs := make(map[string]string, len(s.cfg.Bar.Substitutions))
	for k, v := range s.cfg.Bar.Substitutions {
		subs[k] = v
	}
	b.Substitutions = subs
	return b
}

// UpdateBar validates, persists and applies a new bottle configuration.
// Validation warnings are returned alongside a nil error.
func (s *Store) UpdateBar(b Bar) ([]string, error) {
	b.SetDefaults()
	warns, err := b.Validate()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cfg.Bar
	s.cfg.Bar = b
	if err := Save(s.path, s.cfg); err != nil {
		s.cfg.Bar = old
		return nil, err
	}
	return warns, nil
}
