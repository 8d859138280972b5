package auth

import (
	"sort"
)

// AccountUpdate carries a partial admin-side account update; nil fields are
// left untouched. SkinIDs replaces the unlocked set only when non-empty.
type AccountUpdate struct {
	Role    *Role
	Coins   *int
	SkinIDs []string
}

// ListUsers returns every account.
func (s *Service) ListUsers() ([]*User, error) {
	return s.users.List()
}

// GetUser returns an account by ID.
func (s *Service) GetUser(id string) (*User, error) {
	return s.users.GetByID(id)
}

// UpdateUser applies an admin update to an account. Skin IDs that do not
// exist in the catalog are dropped silently.
func (s *Service) UpdateUser(id string, update AccountUpdate) (*User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	if update.Role != nil && update.Role.Valid() {
		user.Role = *update.Role
	}
	if update.Coins != nil && *update.Coins >= 0 {
		user.Coins = *update.Coins
	}
	if len(update.SkinIDs) > 0 {
		resolved := make([]string, 0, len(update.SkinIDs))
		for _, skinID := range update.SkinIDs {
			if _, err := s.skins.FindByID(skinID); err == nil {
				resolved = append(resolved, skinID)
			}
		}
		user.Skins = resolved
	}

	return s.users.Update(user)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(id string) error {
	return s.users.Delete(id)
}

// RecordWin increments the slot win counter for an account.
func (s *Service) RecordWin(username string) (*User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	user.Wins++
	return s.users.Update(user)
}

// RecordBlackjackWin increments the blackjack win counter for an account.
func (s *Service) RecordBlackjackWin(username string) (*User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	user.BJWins++
	return s.users.Update(user)
}

// TopWinners returns up to n accounts ordered by slot wins, descending.
func (s *Service) TopWinners(n int) ([]*User, error) {
	return s.topBy(n, func(u *User) int { return u.Wins })
}

// TopBlackjackWinners returns up to n accounts ordered by blackjack wins,
// descending.
func (s *Service) TopBlackjackWinners(n int) ([]*User, error) {
	return s.topBy(n, func(u *User) int { return u.BJWins })
}

func (s *Service) topBy(n int, score func(*User) int) ([]*User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return score(users[i]) > score(users[j])
	})
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}
