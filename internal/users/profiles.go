// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

import (
	"encoding/json"
	"sort"

	"github.com/jeranaias/docvault/internal/storage"
)

// DefaultTheme is written into new profiles.
const DefaultTheme = "light"

// =============================================================================
// PROFILE TYPES
// =============================================================================

// Profile is the non-secret per-user record.
type Profile struct {
	CreatedAt   storage.Timestamp `json:"created_at"`
	LastLogin   storage.Timestamp `json:"last_login"`
	LoginCount  int               `json:"login_count"`
	Permissions Permissions       `json:"permissions"`
	Security    SecurityState     `json:"security"`
	Notes       []string          `json:"notes"`
	Settings    Settings          `json:"settings"`
}

// NewProfile returns the profile created at registration.
func NewProfile(createdAt storage.Timestamp, perms Permissions) Profile {
	return Profile{
		CreatedAt:   createdAt,
		Permissions: perms,
		Notes:       []string{},
		Settings:    Settings{Theme: DefaultTheme},
	}
}

// UnmarshalJSON fills defaults for fields missing from older files.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	v := plain{Settings: Settings{Theme: DefaultTheme}}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Notes == nil {
		v.Notes = []string{}
	}
	*p = Profile(v)
	return nil
}

// SecurityState is the lockout bookkeeping for one user.
// IsLocked implies LockTime is set, except in hand-edited files.
type SecurityState struct {
	FailedAttempts int                `json:"failed_attempts"`
	IsLocked       bool               `json:"is_locked"`
	LockTime       *storage.Timestamp `json:"lock_time"`
}

// Settings holds user preferences.
type Settings struct {
	Theme string `json:"theme"`
}

// Permissions are the three capabilities a user may hold.
type Permissions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}

// AllPermissions grants everything.
func AllPermissions() Permissions {
	return Permissions{Read: true, Write: true, Delete: true}
}

// UnmarshalJSON also accepts leitura, escrita and remocao.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw struct {
		Read    *bool `json:"read"`
		Write   *bool `json:"write"`
		Delete  *bool `json:"delete"`
		Leitura *bool `json:"leitura"`
		Escrita *bool `json:"escrita"`
		Remocao *bool `json:"remocao"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Permissions{
		Read:   pick(raw.Read, raw.Leitura),
		Write:  pick(raw.Write, raw.Escrita),
		Delete: pick(raw.Delete, raw.Remocao),
	}
	return nil
}

func pick(current, legacy *bool) bool {
	if current != nil {
		return *current
	}
	if legacy != nil {
		return *legacy
	}
	return false
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileStore persists user_data.json.
type ProfileStore struct {
	*storage.JSONStore[Profile]
}

// NewProfileStore returns a store backed by path.
func NewProfileStore(path string, opts ...storage.Option) *ProfileStore {
	return &ProfileStore{JSONStore: storage.NewJSONStore[Profile](path, opts...)}
}

// Get returns the profile for username.
func (s *ProfileStore) Get(username string) (Profile, bool) {
	p, ok := s.Load()[username]
	return p, ok
}

// Usernames returns every username with a profile, sorted.
func (s *ProfileStore) Usernames() []string {
	m := s.Load()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
