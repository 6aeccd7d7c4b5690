package user

import (
	"sync"
	"time"
)

// Profile is the account record shown in the settings panel.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Store exposes profile retrieval for HTTP handlers.
type Store interface {
	FindByID(id string) (Profile, bool)
	Upsert(profile Profile)
}

// MemoryStore implements Store with an in-memory map. Profiles are ensured on
// login and mutated only through the settings dialog.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Profile
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Profile)}
}

// FindByID looks up a profile by user identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.items[id]
	return profile, ok
}

// Upsert stores or replaces a profile.
func (s *MemoryStore) Upsert(profile Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[profile.ID]; ok && !existing.CreatedAt.IsZero() {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	s.items[profile.ID] = profile
}
