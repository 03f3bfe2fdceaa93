// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/storage"
	"github.com/jeranaias/docvault/internal/users"
)

// DefaultMinPasswordLength is the shortest password Register accepts.
const DefaultMinPasswordLength = 6

// =============================================================================
// SESSION
// =============================================================================

// Session is the result of a successful login.
type Session struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Permissions users.Permissions `json:"permissions"`
	StartedAt   time.Time         `json:"started_at"`
	LoginCount  int               `json:"login_count"`
}

// Can reports whether the session's permissions allow action.
func (s *Session) Can(action security.Action) bool {
	return security.Can(s.Permissions, action)
}

// =============================================================================
// SERVICE
// =============================================================================

// Service registers and authenticates users against the credential and
// profile stores, consulting the lockout engine on every attempt.
type Service struct {
	creds    *users.CredentialStore
	profiles *users.ProfileStore
	lockout  *security.LockoutEngine
	throttle *security.Throttle

	minPasswordLength int
	logger            *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMinPasswordLength sets the minimum password length in characters.
func WithMinPasswordLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

// WithThrottle rate-limits attempts per user. nil disables throttling.
func WithThrottle(t *security.Throttle) Option {
	return func(s *Service) { s.throttle = t }
}

// WithLogger sets the logger for login trace lines.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Service over the given stores.
func New(creds *users.CredentialStore, profiles *users.ProfileStore, lockout *security.LockoutEngine, opts ...Option) *Service {
	s := &Service{
		creds:             creds,
		profiles:          profiles,
		lockout:           lockout,
		minPasswordLength: DefaultMinPasswordLength,
		logger:            logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether username has a credential record.
func (s *Service) Exists(username string) bool {
	_, ok := s.creds.Get(username)
	return ok
}

// =============================================================================
// REGISTER
// =============================================================================

// Register creates a credential record and a fresh profile for username.
func (s *Service) Register(username, password string, perms users.Permissions) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidUsername
	}
	if utf8.RuneCountInString(password) < s.minPasswordLength {
		return fmt.Errorf("%w: use at least %d characters", ErrPasswordTooShort, s.minPasswordLength)
	}

	salt, err := security.GenerateSalt()
	if err != nil {
		return err
	}

	err = s.creds.Update(func(m map[string]users.CredentialRecord) error {
		if _, exists := m[username]; exists {
			return ErrUserExists
		}
		m[username] = users.CredentialRecord{
			Password: security.HashPassword(password, salt),
			Salt:     salt,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", username, err)
	}

	created := storage.NewTimestamp(s.lockout.Now())
	err = s.profiles.Update(func(m map[string]users.Profile) error {
		m[username] = users.NewProfile(created, perms)
		return nil
	})
	if err != nil {
		s.dropCredential(username, salt)
		return fmt.Errorf("register %s: %w", username, err)
	}

	s.logger.Info("user registered", "user", username,
		"read", perms.Read, "write", perms.Write, "delete", perms.Delete)
	return nil
}

// =============================================================================
// AUTHENTICATE
// =============================================================================

// Authenticate checks username and password. See the package doc for the
// errors it returns.
func (s *Service) Authenticate(username, password string) error {
	s.logger.Info("login attempt", "user", username)

	if !s.throttle.Allow(username) {
		s.logger.Warn("login throttled", "user", username)
		return ErrThrottled
	}

	locked, err := s.lockout.IsLocked(username)
	if err != nil {
		return err
	}
	if locked {
		s.logger.Warn("login blocked, account locked", "user", username)
		return s.lockedError(username)
	}

	rec, ok := s.creds.Get(username)
	if !ok {
		s.logger.Info("login failed, unknown user", "user", username)
		return ErrUserNotFound
	}

	var matched bool
	if rec.IsLegacy() {
		matched = rec.Password == password
		if err := s.migrate(username, rec); err != nil {
			return err
		}
	} else {
		matched = security.VerifyPassword(rec.Password, rec.Salt, password)
	}

	if matched {
		return s.recordSuccess(username)
	}

	attempts, err := s.lockout.IncrementFailedAttempts(username)
	if err != nil {
		return err
	}
	remaining := s.lockout.MaxAttempts() - attempts
	s.logger.Info("login failed, wrong password", "user", username, "remaining", remaining)
	if remaining <= 0 {
		return s.lockedError(username)
	}
	return &WrongPasswordError{Remaining: remaining}
}

// Login authenticates and opens a session.
func (s *Service) Login(username, password string) (*Session, error) {
	if err := s.Authenticate(username, password); err != nil {
		return nil, err
	}

	p, _ := s.profiles.Get(username)
	return &Session{
		ID:          uuid.NewString(),
		Username:    username,
		Permissions: p.Permissions,
		StartedAt:   s.lockout.Now(),
		LoginCount:  p.LoginCount,
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// dropCredential removes the record Register just wrote, identified by its
// salt, so a failed registration leaves no credential without a profile.
func (s *Service) dropCredential(username, salt string) {
	err := s.creds.Update(func(m map[string]users.CredentialRecord) error {
		if rec, ok := m[username]; ok && rec.Salt == salt {
			delete(m, username)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to roll back credential", "user", username, "error", err)
	}
}

// migrate rewrites a legacy record as a salted hash of its stored value.
func (s *Service) migrate(username string, legacy users.CredentialRecord) error {
	salt, err := security.GenerateSalt()
	if err != nil {
		return err
	}
	err = s.creds.Update(func(m map[string]users.CredentialRecord) error {
		m[username] = users.CredentialRecord{
			Password: security.HashPassword(legacy.Password, salt),
			Salt:     salt,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate credential for %s: %w", username, err)
	}
	s.logger.Info("legacy credential upgraded", "user", username)
	return nil
}

func (s *Service) recordSuccess(username string) error {
	now := storage.NewTimestamp(s.lockout.Now())
	err := s.profiles.Update(func(m map[string]users.Profile) error {
		p, ok := m[username]
		if !ok {
			return nil
		}
		p.LastLogin = now
		p.LoginCount++
		m[username] = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("record login for %s: %w", username, err)
	}
	if err := s.lockout.ResetFailedAttempts(username); err != nil {
		return err
	}
	s.logger.Info("login succeeded", "user", username)
	return nil
}

func (s *Service) lockedError(username string) *LockedError {
	e := &LockedError{Username: username}
	if st, ok := s.lockout.Status(username); ok && st.UnlockAt != nil {
		e.UnlockAt = *st.UnlockAt
	}
	return e
}
