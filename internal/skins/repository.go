package skins

import "errors"

// Repository defines operations for skin catalog persistence.
type Repository interface {
	// Create stores a new skin and assigns its ID. Implementations must
	// enforce unique names and return ErrSkinExists on conflict.
	Create(skin *Skin) (*Skin, error)

	// GetByID returns a skin by its identifier.
	GetByID(id string) (*Skin, error)

	// GetByName returns a skin by exact name.
	GetByName(name string) (*Skin, error)

	// Update persists the full skin document. Returns ErrSkinNotFound if
	// the ID is unknown.
	Update(skin *Skin) (*Skin, error)

	// Delete removes a skin by ID. Returns ErrSkinNotFound if missing.
	Delete(id string) error

	// List returns the whole catalog.
	List() ([]*Skin, error)
}

// Domain-level errors returned by the repository.
var (
	ErrSkinNotFound = errors.New("skin not found")
	ErrSkinExists   = errors.New("skin already exists")
)
