package shop

import (
	"errors"
	"fmt"

	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/eventbus"
	"github.com/annel0/casino-server/internal/logging"
	"github.com/annel0/casino-server/internal/skins"
)

// Purchase errors surfaced by the shop.
var (
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyOwned      = errors.New("skin already unlocked")
)

// Service handles shop purchases: coin balance checks and skin unlocks.
type Service struct {
	users  auth.UserRepository
	skins  *skins.Service
	events eventbus.Publisher
}

// NewService builds the shop service.
func NewService(users auth.UserRepository, catalog *skins.Service, events eventbus.Publisher) *Service {
	if events == nil {
		events = eventbus.NopPublisher{}
	}
	return &Service{users: users, skins: catalog, events: events}
}

// BuySkin purchases the named skin for the user: the price is deducted from
// the coin balance and the skin joins the unlocked set. The read-modify-write
// is not transactional; concurrent purchases by the same user are
// last-writer-wins, same as every other account mutation.
func (s *Service) BuySkin(username, skinName string) (*skins.Skin, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	skin, err := s.skins.FindByName(skinName)
	if err != nil {
		return nil, err
	}

	if user.Coins < skin.Price {
		return nil, ErrInsufficientCoins
	}
	if !user.UnlockSkin(skin.ID) {
		return nil, ErrAlreadyOwned
	}
	user.Coins -= skin.Price

	if _, err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("store purchase: %w", err)
	}

	s.events.Publish("skin.purchased", map[string]interface{}{
		"user_id": user.ID,
		"skin_id": skin.ID,
		"skin":    skin.Name,
		"price":   skin.Price,
	})
	logging.Info("user %s unlocked skin %q for %d coins", user.Username, skin.Name, skin.Price)
	return skin, nil
}
