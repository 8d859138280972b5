package skins

import (
	"context"
	"encoding/json"
	"time"

	"github.com/annel0/casino-server/internal/cache"
	"github.com/annel0/casino-server/internal/logging"
)

// catalogTTL bounds staleness of name lookups served from the cache.
const catalogTTL = 5 * time.Minute

// Service manages the skin catalog. Name lookups are the hot path (every
// shop purchase resolves a skin by name), so they go through the cache.
type Service struct {
	repo  Repository
	cache cache.Cache
}

// NewService builds the catalog service. A nil cache disables caching.
func NewService(repo Repository, c cache.Cache) *Service {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Service{repo: repo, cache: c}
}

// SkinUpdate carries a partial skin update; nil fields are left untouched.
// Reels are only replaced when non-empty, matching the admin API contract.
type SkinUpdate struct {
	Name        *string
	Price       *int
	Description *string
	Reels       []string
	Sellable    *bool
}

func cacheKey(name string) string {
	return "skin:name:" + name
}

func (s *Service) invalidate(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, cacheKey(name)); err != nil {
		logging.Warn("skins: cache invalidate %q: %v", name, err)
	}
}

// CreateSkin adds a new skin to the catalog. The name must be unused.
func (s *Service) CreateSkin(skin *Skin) (*Skin, error) {
	if _, err := s.repo.GetByName(skin.Name); err == nil {
		return nil, ErrSkinExists
	}
	created, err := s.repo.Create(skin)
	if err != nil {
		return nil, err
	}
	s.invalidate(created.Name)
	return created, nil
}

// UpdateSkin applies a partial update to an existing skin.
func (s *Service) UpdateSkin(id string, update SkinUpdate) (*Skin, error) {
	skin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldName := skin.Name
	if update.Name != nil && *update.Name != "" {
		skin.Name = *update.Name
	}
	if update.Price != nil && *update.Price >= 0 {
		skin.Price = *update.Price
	}
	if update.Description != nil {
		skin.Description = *update.Description
	}
	if len(update.Reels) > 0 {
		skin.Reels = update.Reels
	}
	if update.Sellable != nil {
		skin.Sellable = *update.Sellable
	}

	updated, err := s.repo.Update(skin)
	if err != nil {
		return nil, err
	}
	s.invalidate(oldName)
	if updated.Name != oldName {
		s.invalidate(updated.Name)
	}
	return updated, nil
}

// DeleteSkin removes a skin from the catalog.
func (s *Service) DeleteSkin(id string) error {
	skin, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(skin.Name)
	return nil
}

// FindByName resolves a skin by exact name, serving from the cache when
// possible. A cache failure falls through to the repository.
func (s *Service) FindByName(name string) (*Skin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if data, err := s.cache.Get(ctx, cacheKey(name)); err == nil {
		var skin Skin
		if err := json.Unmarshal(data, &skin); err == nil {
			return &skin, nil
		}
		// Corrupt entry; drop it and reload from the repository.
		_ = s.cache.Delete(ctx, cacheKey(name))
	}

	skin, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(skin); err == nil {
		if err := s.cache.Set(ctx, cacheKey(name), data, catalogTTL); err != nil {
			logging.Warn("skins: cache set %q: %v", name, err)
		}
	}
	return skin, nil
}

// FindByID resolves a skin by identifier.
func (s *Service) FindByID(id string) (*Skin, error) {
	return s.repo.GetByID(id)
}

// List returns the whole catalog.
func (s *Service) List() ([]*Skin, error) {
	return s.repo.List()
}

// ListSellable returns the skins currently purchasable in the shop.
func (s *Service) ListSellable() ([]*Skin, error) {
	all, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	sellable := make([]*Skin, 0, len(all))
	for _, skin := range all {
		if skin.Sellable {
			sellable = append(sellable, skin)
		}
	}
	return sellable, nil
}

// EnsureDefault seeds the starter skin granted at registration. Registration
// fails hard when this skin is missing, so the server seeds it at startup.
func (s *Service) EnsureDefault(name string) error {
	if _, err := s.repo.GetByName(name); err == nil {
		return nil
	} else if err != ErrSkinNotFound {
		return err
	}

	_, err := s.repo.Create(&Skin{
		Name:        name,
		Price:       0,
		Description: "Skin inicial desbloqueada para todos los jugadores",
		Reels:       []string{"🍔", "🍕", "🌭", "🍟", "🍩"},
		Sellable:    false,
	})
	if err == ErrSkinExists {
		return nil
	}
	return err
}
