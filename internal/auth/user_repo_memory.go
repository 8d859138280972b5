package auth

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserRepo is a threadsafe in-memory storage useful for tests and
// single-instance development servers. NOT suitable for production.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*User // key = user ID
}

// NewMemoryUserRepo returns an empty in-memory repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*User)}
}

func cloneUser(u *User) *User {
	clone := *u
	clone.Skins = append([]string(nil), u.Skins...)
	if clone.Skins == nil {
		clone.Skins = []string{}
	}
	return &clone
}

// Create implements UserRepository.
func (r *MemoryUserRepo) Create(user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username := strings.ToLower(user.Username)
	email := strings.ToLower(user.Email)
	for _, existing := range r.users {
		if existing.Username == username || existing.Email == email {
			return nil, ErrUserExists
		}
	}

	stored := cloneUser(user)
	stored.ID = uuid.NewString()
	stored.Username = username
	stored.Email = email
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

// GetByUsername implements UserRepository.
func (r *MemoryUserRepo) GetByUsername(username string) (*User, error) {
	key := strings.ToLower(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == key {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByEmail implements UserRepository.
func (r *MemoryUserRepo) GetByEmail(email string) (*User, error) {
	key := strings.ToLower(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == key {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID implements UserRepository.
func (r *MemoryUserRepo) GetByID(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByResetToken implements UserRepository.
func (r *MemoryUserRepo) GetByResetToken(token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// Update implements UserRepository.
func (r *MemoryUserRepo) Update(user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, ErrUserNotFound
	}
	stored := cloneUser(user)
	stored.Username = strings.ToLower(user.Username)
	stored.Email = strings.ToLower(user.Email)
	r.users[user.ID] = stored
	return cloneUser(stored), nil
}

// Delete implements UserRepository.
func (r *MemoryUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// List implements UserRepository.
func (r *MemoryUserRepo) List() ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

// Close implements UserRepository.
func (r *MemoryUserRepo) Close() error { return nil }
