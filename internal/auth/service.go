package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/casino-server/internal/eventbus"
	"github.com/annel0/casino-server/internal/logging"
	"github.com/annel0/casino-server/internal/mail"
	"github.com/annel0/casino-server/internal/skins"
)

// Domain errors surfaced by the auth service.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAdmin           = errors.New("admin role required")
	ErrEmailNotFound      = errors.New("email not found")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
	ErrDefaultSkinMissing = errors.New("default skin missing from catalog")
)

const (
	// dailyLoginBonus is granted once per calendar day on the first login.
	dailyLoginBonus = 20

	// resetTokenTTL is the validity window of a password-reset token.
	resetTokenTTL = time.Hour

	// mailSendTimeout bounds the outbound mail call so a slow provider
	// cannot stall the reset-request handler.
	mailSendTimeout = 10 * time.Second
)

// Service orchestrates registration, login and the password-reset flow.
type Service struct {
	users       UserRepository
	skins       *skins.Service
	codec       *TokenCodec
	mailer      mail.Mailer
	events      eventbus.Publisher
	defaultSkin string
	webHost     string
}

// ServiceConfig wires the auth service's collaborators.
type ServiceConfig struct {
	Users       UserRepository
	Skins       *skins.Service
	Codec       *TokenCodec
	Mailer      mail.Mailer
	Events      eventbus.Publisher
	DefaultSkin string // starter skin name granted at registration
	WebHost     string // public base URL used to build reset links
}

// NewService builds the auth service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Events == nil {
		cfg.Events = eventbus.NopPublisher{}
	}
	return &Service{
		users:       cfg.Users,
		skins:       cfg.Skins,
		codec:       cfg.Codec,
		mailer:      cfg.Mailer,
		events:      cfg.Events,
		defaultSkin: cfg.DefaultSkin,
		webHost:     cfg.WebHost,
	}
}

// Register creates an account. Username and email must both be unused
// (case-insensitive). The starter skin is unlocked by name; a missing
// starter skin aborts registration (it is seeded at server startup, so this
// only fires when the catalog was tampered with).
func (s *Service) Register(username, password, email string, role Role) (*User, error) {
	if !role.Valid() {
		role = RoleUser
	}

	if _, err := s.users.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	starter, err := s.skins.FindByName(s.defaultSkin)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrDefaultSkinMissing, s.defaultSkin)
	}

	user := NewUser(username, passwordHash, email)
	user.Role = role
	user.UnlockSkin(starter.ID)

	created, err := s.users.Create(user)
	if err == ErrUserExists {
		// Lost the race against a concurrent registration.
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.events.Publish("user.registered", map[string]interface{}{
		"user_id":  created.ID,
		"username": created.Username,
		"role":     string(created.Role),
	})
	logging.Info("registered user %s (role=%s)", created.Username, created.Role)
	return created, nil
}

// verifyCredentials loads the user and checks the password. Unknown user and
// wrong password collapse into ErrInvalidCredentials so callers cannot
// distinguish which one failed.
func (s *Service) verifyCredentials(username, password string) (*User, error) {
	user, err := s.users.GetByUsername(username)
	if err == ErrUserNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and issues a session token. The first login of
// each calendar day grants a flat coin bonus; the last-login timestamp is
// updated on every successful login.
func (s *Service) Login(username, password string) (string, *User, error) {
	user, err := s.verifyCredentials(username, password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if user.IsFirstLoginOfDay(now) {
		user.Coins += dailyLoginBonus
	}
	user.LastLoginDate = now

	updated, err := s.users.Update(user)
	if err != nil {
		return "", nil, fmt.Errorf("update login state: %w", err)
	}

	token, err := s.codec.Encode(updated.Username, updated.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.events.Publish("user.login", map[string]interface{}{
		"user_id":  updated.ID,
		"username": updated.Username,
	})
	return token, updated, nil
}

// AdminLogin authenticates an administrator. Unlike Login it neither grants
// the daily bonus nor updates the last-login timestamp; the admin console is
// not a gameplay session.
func (s *Service) AdminLogin(username, password string) (string, *User, error) {
	user, err := s.verifyCredentials(username, password)
	if err != nil {
		return "", nil, err
	}
	if user.Role != RoleAdmin {
		return "", nil, ErrNotAdmin
	}

	token, err := s.codec.Encode(user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// RequestPasswordReset issues a fresh single-use reset token for the account
// holding the given email and mails the reset link. A repeated request
// overwrites any token issued earlier, so at most one token is active per
// user.
func (s *Service) RequestPasswordReset(email string) error {
	user, err := s.users.GetByEmail(email)
	if err == ErrUserNotFound {
		return ErrEmailNotFound
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	user.ResetToken = token
	user.ResetExpiry = time.Now().Add(resetTokenTTL)
	if _, err := s.users.Update(user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.webHost + "/restablecer-contrasena?token=" + token

	ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
	defer cancel()
	if err := s.mailer.Send(ctx, user.Email, "Restablecimiento de contraseña", link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	logging.Info("password reset requested for %s", user.Username)
	return nil
}

// ResetPassword redeems a reset token. The token must match exactly and be
// inside its validity window; redemption clears it, making it single-use.
func (s *Service) ResetPassword(token, newPassword string) error {
	user, err := s.users.GetByResetToken(token)
	if err == ErrUserNotFound {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	if time.Now().After(user.ResetExpiry) {
		return ErrResetTokenInvalid
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	user.ResetToken = ""
	user.ResetExpiry = time.Time{}
	if _, err := s.users.Update(user); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	s.events.Publish("user.password_reset", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

// FindByUsername exposes account lookup to other services and handlers.
func (s *Service) FindByUsername(username string) (*User, error) {
	return s.users.GetByUsername(username)
}
