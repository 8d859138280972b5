package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/skins"
)

func newTestShop(t *testing.T) (*Service, auth.UserRepository, *skins.Service) {
	t.Helper()
	users := auth.NewMemoryUserRepo()
	catalog := skins.NewService(skins.NewMemorySkinRepo(), nil)
	return NewService(users, catalog, nil), users, catalog
}

func seedUser(t *testing.T, users auth.UserRepository, coins int) *auth.User {
	t.Helper()
	user := auth.NewUser("alice", "hash", "alice@example.com")
	user.Coins = coins
	created, err := users.Create(user)
	require.NoError(t, err)
	return created
}

func TestBuySkin(t *testing.T) {
	shop, users, catalog := newTestShop(t)
	seedUser(t, users, 200)

	created, err := catalog.CreateSkin(&skins.Skin{Name: "Frutas", Price: 150, Sellable: true})
	require.NoError(t, err)

	bought, err := shop.BuySkin("alice", "Frutas")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bought.ID)

	stored, err := users.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Coins)
	assert.True(t, stored.HasSkin(created.ID))
}

func TestBuySkinInsufficientCoins(t *testing.T) {
	shop, users, catalog := newTestShop(t)
	seedUser(t, users, 100)

	_, err := catalog.CreateSkin(&skins.Skin{Name: "Frutas", Price: 150, Sellable: true})
	require.NoError(t, err)

	_, err = shop.BuySkin("alice", "Frutas")
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	stored, err := users.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Coins, "failed purchase must not touch the balance")
	assert.Empty(t, stored.Skins)
}

func TestBuySkinAlreadyOwned(t *testing.T) {
	shop, users, catalog := newTestShop(t)
	seedUser(t, users, 1000)

	_, err := catalog.CreateSkin(&skins.Skin{Name: "Frutas", Price: 150, Sellable: true})
	require.NoError(t, err)

	_, err = shop.BuySkin("alice", "Frutas")
	require.NoError(t, err)

	_, err = shop.BuySkin("alice", "Frutas")
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	stored, err := users.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 850, stored.Coins, "second attempt must not charge again")
}

func TestBuySkinNotFound(t *testing.T) {
	shop, users, _ := newTestShop(t)
	seedUser(t, users, 100)

	_, err := shop.BuySkin("alice", "Fantasma")
	assert.ErrorIs(t, err, skins.ErrSkinNotFound)
}

func TestBuySkinUnknownUser(t *testing.T) {
	shop, _, catalog := newTestShop(t)

	_, err := catalog.CreateSkin(&skins.Skin{Name: "Frutas", Price: 0, Sellable: true})
	require.NoError(t, err)

	_, err = shop.BuySkin("nobody", "Frutas")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestBuySkinFree(t *testing.T) {
	shop, users, catalog := newTestShop(t)
	seedUser(t, users, 0)

	_, err := catalog.CreateSkin(&skins.Skin{Name: "Gratis", Price: 0, Sellable: true})
	require.NoError(t, err)

	_, err = shop.BuySkin("alice", "Gratis")
	require.NoError(t, err)

	stored, err := users.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Coins)
	assert.Len(t, stored.Skins, 1)
}
