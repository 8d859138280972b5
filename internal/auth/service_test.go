package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/casino-server/internal/skins"
)

const testDefaultSkin = "Comida Basura"

// captureMailer records outgoing mail for assertions.
type captureMailer struct {
	mu   sync.Mutex
	to   []string
	body []string
}

func (m *captureMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func newTestService(t *testing.T) (*Service, *captureMailer) {
	t.Helper()

	catalog := skins.NewService(skins.NewMemorySkinRepo(), nil)
	require.NoError(t, catalog.EnsureDefault(testDefaultSkin))

	codec, err := NewTokenCodec("test-secret-key", time.Hour)
	require.NoError(t, err)

	mailer := &captureMailer{}
	svc := NewService(ServiceConfig{
		Users:       NewMemoryUserRepo(),
		Skins:       catalog,
		Codec:       codec,
		Mailer:      mailer,
		DefaultSkin: testDefaultSkin,
		WebHost:     "http://localhost:8080",
	})
	return svc, mailer
}

func TestRegisterGrantsStarterSkin(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("Alice", "password123", "Alice@Example.com", RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username, "username is stored lowercase")
	assert.Equal(t, "alice@example.com", user.Email, "email is stored lowercase")
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, 0, user.Coins)
	require.Len(t, user.Skins, 1)

	starter, err := svc.skins.FindByName(testDefaultSkin)
	require.NoError(t, err)
	assert.Equal(t, starter.ID, user.Skins[0])
}

func TestRegisterInvalidRoleFallsBackToUser(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("bob", "password123", "bob@example.com", Role("ROLE_WIZARD"))
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	_, err = svc.Register("ALICE", "other", "new@example.com", RoleUser)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register("someone", "other", "ALICE@example.com", RoleUser)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginDailyBonus(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	// First ever login lands on a later day than the epoch default.
	token, user, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 20, user.Coins)

	// Second login on the same day earns nothing.
	_, user, err = svc.Login("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, 20, user.Coins)
	assert.WithinDuration(t, time.Now(), user.LastLoginDate, 5*time.Second)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("root", "password123", "root@example.com", RoleAdmin)
	require.NoError(t, err)
	_, err = svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	token, admin, err := svc.AdminLogin("root", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, admin.Coins, "admin login must not grant the daily bonus")
	assert.Equal(t, time.Unix(0, 0).UTC(), admin.LastLoginDate.UTC(), "admin login must not touch the timestamp")

	_, _, err = svc.AdminLogin("alice", "password123")
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, _, err = svc.AdminLogin("root", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer := newTestService(t)

	_, err := svc.Register("alice", "oldpassword", "alice@example.com", RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset("alice@example.com"))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "alice@example.com", mailer.to[0])
	assert.Contains(t, mailer.body[0], "http://localhost:8080/restablecer-contrasena?token=")

	stored, err := svc.FindByUsername("alice")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	require.NoError(t, svc.ResetPassword(stored.ResetToken, "newpassword"))

	_, _, err = svc.Login("alice", "oldpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("alice", "newpassword")
	assert.NoError(t, err)

	// The token is single-use.
	err = svc.ResetPassword(stored.ResetToken, "another")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	svc, mailer := newTestService(t)

	err := svc.RequestPasswordReset("nobody@example.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.Empty(t, mailer.to)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("alice", "oldpassword", "alice@example.com", RoleUser)
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset("alice@example.com"))

	stored, err := svc.FindByUsername("alice")
	require.NoError(t, err)
	stored.ResetExpiry = time.Now().Add(-time.Minute)
	_, err = svc.users.Update(stored)
	require.NoError(t, err)

	err = svc.ResetPassword(stored.ResetToken, "newpassword")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestUpdateUserPartial(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	role := RoleVIP
	coins := 500
	updated, err := svc.UpdateUser(user.ID, AccountUpdate{Role: &role, Coins: &coins})
	require.NoError(t, err)
	assert.Equal(t, RoleVIP, updated.Role)
	assert.Equal(t, 500, updated.Coins)
	assert.Equal(t, user.Skins, updated.Skins, "absent skin list leaves skins untouched")

	negative := -5
	updated, err = svc.UpdateUser(user.ID, AccountUpdate{Coins: &negative})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.Coins, "negative balances are rejected")
}

func TestUpdateUserDropsUnknownSkins(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("alice", "password123", "alice@example.com", RoleUser)
	require.NoError(t, err)

	starter, err := svc.skins.FindByName(testDefaultSkin)
	require.NoError(t, err)

	updated, err := svc.UpdateUser(user.ID, AccountUpdate{
		SkinIDs: []string{starter.ID, "no-such-skin"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{starter.ID}, updated.Skins)
}

func TestWinCountersAndRankings(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := svc.Register(name, "password123", name+"@example.com", RoleUser)
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		_, err := svc.RecordWin("bob")
		require.NoError(t, err)
	}
	_, err := svc.RecordWin("alice")
	require.NoError(t, err)
	_, err = svc.RecordBlackjackWin("carol")
	require.NoError(t, err)

	top, err := svc.TopWinners(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, 3, top[0].Wins)
	assert.Equal(t, "alice", top[1].Username)

	bjTop, err := svc.TopBlackjackWinners(10)
	require.NoError(t, err)
	require.Len(t, bjTop, 3)
	assert.Equal(t, "carol", bjTop[0].Username)
	assert.Equal(t, 1, bjTop[0].BJWins)

	_, err = svc.RecordWin("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
