package skins

import (
	"sync"

	"github.com/google/uuid"
)

// MemorySkinRepo is a threadsafe in-memory catalog for tests and
// development servers.
type MemorySkinRepo struct {
	mu    sync.RWMutex
	skins map[string]*Skin // key = skin ID
}

// NewMemorySkinRepo returns an empty in-memory repository.
func NewMemorySkinRepo() *MemorySkinRepo {
	return &MemorySkinRepo{skins: make(map[string]*Skin)}
}

func cloneSkin(s *Skin) *Skin {
	clone := *s
	clone.Reels = append([]string(nil), s.Reels...)
	if clone.Reels == nil {
		clone.Reels = []string{}
	}
	return &clone
}

// Create implements Repository.
func (r *MemorySkinRepo) Create(skin *Skin) (*Skin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.skins {
		if existing.Name == skin.Name {
			return nil, ErrSkinExists
		}
	}
	stored := cloneSkin(skin)
	stored.ID = uuid.NewString()
	r.skins[stored.ID] = stored
	return cloneSkin(stored), nil
}

// GetByID implements Repository.
func (r *MemorySkinRepo) GetByID(id string) (*Skin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skins[id]
	if !ok {
		return nil, ErrSkinNotFound
	}
	return cloneSkin(s), nil
}

// GetByName implements Repository.
func (r *MemorySkinRepo) GetByName(name string) (*Skin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.skins {
		if s.Name == name {
			return cloneSkin(s), nil
		}
	}
	return nil, ErrSkinNotFound
}

// Update implements Repository.
func (r *MemorySkinRepo) Update(skin *Skin) (*Skin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skins[skin.ID]; !ok {
		return nil, ErrSkinNotFound
	}
	stored := cloneSkin(skin)
	r.skins[skin.ID] = stored
	return cloneSkin(stored), nil
}

// Delete implements Repository.
func (r *MemorySkinRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skins[id]; !ok {
		return ErrSkinNotFound
	}
	delete(r.skins, id)
	return nil
}

// List implements Repository.
func (r *MemorySkinRepo) List() ([]*Skin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Skin, 0, len(r.skins))
	for _, s := range r.skins {
		result = append(result, cloneSkin(s))
	}
	return result, nil
}
