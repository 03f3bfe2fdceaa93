// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docvault/internal/storage"
)

// =============================================================================
// CREDENTIAL TESTS
// =============================================================================

func TestCredentialRecord_Decode(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		password   string
		salt       string
		wantLegacy bool
	}{
		{
			name:     "salted",
			input:    `{"password": "abc123", "salt": "00ff"}`,
			password: "abc123",
			salt:     "00ff",
		},
		{
			name:     "empty salt is still salted",
			input:    `{"password": "abc123", "salt": ""}`,
			password: "abc123",
		},
		{
			name:       "bare string",
			input:      `"hunter22"`,
			password:   "hunter22",
			wantLegacy: true,
		},
		{
			name:       "object without salt",
			input:      `{"password": "hunter22"}`,
			password:   "hunter22",
			wantLegacy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CredentialRecord
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.password, got.Password)
			assert.Equal(t, tt.salt, got.Salt)
			assert.Equal(t, tt.wantLegacy, got.IsLegacy())
		})
	}
}

func TestCredentialRecord_Encode(t *testing.T) {
	var legacy CredentialRecord
	require.NoError(t, json.Unmarshal([]byte(`"hunter22"`), &legacy))
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.JSONEq(t, `{"password": "hunter22"}`, string(data))

	data, err = json.Marshal(CredentialRecord{Password: "abc123"})
	require.NoError(t, err)
	require.JSONEq(t, `{"password": "abc123", "salt": ""}`, string(data))

	var back CredentialRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.IsLegacy())
}

func TestCredentialStore_MixedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	body := `{"old": "plain123", "new": {"password": "deadbeef", "salt": "cafe"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	s := NewCredentialStore(path)
	old, ok := s.Get("old")
	require.True(t, ok)
	assert.True(t, old.IsLegacy())

	cur, ok := s.Get("new")
	require.True(t, ok)
	assert.Equal(t, "cafe", cur.Salt)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfile_DecodeFillsDefaults(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"created_at": "2024-01-01 10:00:00", "last_login": "", "login_count": 3}`), &p))

	assert.Equal(t, 3, p.LoginCount)
	assert.True(t, p.LastLogin.IsZero())
	assert.Equal(t, Permissions{}, p.Permissions)
	assert.Equal(t, SecurityState{}, p.Security)
	assert.Equal(t, []string{}, p.Notes)
	assert.Equal(t, DefaultTheme, p.Settings.Theme)
}

func TestPermissions_LegacyKeys(t *testing.T) {
	var p Permissions
	require.NoError(t, json.Unmarshal([]byte(`{"leitura": true, "escrita": false, "remocao": true}`), &p))
	assert.Equal(t, Permissions{Read: true, Delete: true}, p)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"read": true, "write": false, "delete": true}`, string(data))
}

func TestPermissions_CurrentKeysWin(t *testing.T) {
	var p Permissions
	require.NoError(t, json.Unmarshal([]byte(`{"read": false, "leitura": true}`), &p))
	assert.False(t, p.Read)
}

func TestProfile_EncodeShape(t *testing.T) {
	created := storage.NewTimestamp(time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local))
	p := NewProfile(created, Permissions{Read: true})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	want := `{
		"created_at": "2024-05-01 09:30:00",
		"last_login": "",
		"login_count": 0,
		"permissions": {"read": true, "write": false, "delete": false},
		"security": {"failed_attempts": 0, "is_locked": false, "lock_time": null},
		"notes": [],
		"settings": {"theme": "light"}
	}`
	assert.JSONEq(t, want, string(data))
}

func TestProfileStore_MalformedTimestampKeepsEveryProfile(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "user_data.json"))
	require.NoError(t, s.Save(map[string]Profile{
		"alice": NewProfile(storage.NewTimestamp(time.Now()), Permissions{Read: true}),
		"carol": NewProfile(storage.NewTimestamp(time.Now()), Permissions{Write: true}),
	}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["carol"]["created_at"] = "01/02/2024"
	data, err = json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), data, 0600))

	alice, ok := s.Get("alice")
	require.True(t, ok)
	assert.True(t, alice.Permissions.Read)

	carol, ok := s.Get("carol")
	require.True(t, ok)
	assert.True(t, carol.Permissions.Write)
	assert.True(t, carol.CreatedAt.IsZero())
	assert.Equal(t, `"01/02/2024"`, carol.CreatedAt.Malformed())

	require.NoError(t, s.Update(func(m map[string]Profile) error {
		p := m["carol"]
		p.LoginCount++
		m["carol"] = p
		return nil
	}))
	data, err = os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created_at": "01/02/2024"`)

	backups, err := filepath.Glob(s.Path() + ".bak.*")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestProfileStore_Usernames(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "user_data.json"))
	require.NoError(t, s.Save(map[string]Profile{
		"carol": NewProfile(storage.Timestamp{}, Permissions{}),
		"alice": NewProfile(storage.Timestamp{}, Permissions{}),
	}))

	assert.Equal(t, []string{"alice", "carol"}, s.Usernames())

	p, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, DefaultTheme, p.Settings.Theme)
}
