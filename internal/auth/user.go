package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
	RoleVIP   Role = "ROLE_VIP"
)

// ParseRole maps a client-supplied role name to a Role. Accepts both the
// short form ("admin") and the stored form ("ROLE_ADMIN"), case-insensitive.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "ROLE_") {
		name = "ROLE_" + name
	}
	switch Role(name) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleVIP:
		return RoleVIP, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleVIP:
		return true
	}
	return false
}

// User represents a casino account.
// PasswordHash and the reset-token fields never leave the server.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"` // unique, stored lowercase
	PasswordHash  string    `json:"-"`
	Email         string    `json:"email"` // unique, stored lowercase
	Role          Role      `json:"rol"`
	Coins         int       `json:"coins"`
	Wins          int       `json:"wins"`
	BJWins        int       `json:"bjwins"`
	Skins         []string  `json:"skins"` // unlocked skin IDs, no duplicates
	LastLoginDate time.Time `json:"lastLoginDate"`
	ResetToken    string    `json:"-"`
	ResetExpiry   time.Time `json:"-"`
}

// NewUser returns an account with default state: role USER, zero coins,
// never logged in.
func NewUser(username, passwordHash, email string) *User {
	return &User{
		Username:      strings.ToLower(username),
		PasswordHash:  passwordHash,
		Email:         strings.ToLower(email),
		Role:          RoleUser,
		Skins:         []string{},
		LastLoginDate: time.Unix(0, 0).UTC(),
	}
}

// IsFirstLoginOfDay reports whether now falls on a later calendar day (UTC)
// than the stored last login. Day comparison uses day-of-year plus year, the
// same policy for every user regardless of their local timezone.
func (u *User) IsFirstLoginOfDay(now time.Time) bool {
	last := u.LastLoginDate.UTC()
	today := now.UTC()
	return last.YearDay() != today.YearDay() || last.Year() != today.Year()
}

// HasSkin reports whether the skin is already unlocked.
func (u *User) HasSkin(skinID string) bool {
	for _, id := range u.Skins {
		if id == skinID {
			return true
		}
	}
	return false
}

// UnlockSkin adds a skin to the unlocked set. Returns false if already owned.
func (u *User) UnlockSkin(skinID string) bool {
	if u.HasSkin(skinID) {
		return false
	}
	u.Skins = append(u.Skins, skinID)
	return true
}
