// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jeranaias/docvault/internal/storage"
)

// CredentialRecord is the stored secret for one user.
type CredentialRecord struct {
	// Password is hex SHA-256 of password+salt, or the legacy stored value.
	Password string `json:"password"`

	// Salt is 32 hex characters.
	Salt string `json:"salt"`

	// legacy is set when the record was read as a bare string or as an
	// object with no salt key.
	legacy bool
}

// IsLegacy reports whether the record predates salted hashing. Only the
// absence of a salt key counts; an empty salt value does not.
func (r CredentialRecord) IsLegacy() bool {
	return r.legacy
}

// MarshalJSON writes legacy records back without a salt key.
func (r CredentialRecord) MarshalJSON() ([]byte, error) {
	if r.legacy {
		return json.Marshal(struct {
			Password string `json:"password"`
		}{r.Password})
	}
	type plain CredentialRecord
	return json.Marshal(plain(r))
}

// UnmarshalJSON accepts the current object form and the legacy bare string.
func (r *CredentialRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var legacy string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("credential: %w", err)
		}
		*r = CredentialRecord{Password: legacy, legacy: true}
		return nil
	}

	var fields struct {
		Password string  `json:"password"`
		Salt     *string `json:"salt"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("credential: %w", err)
	}
	*r = CredentialRecord{Password: fields.Password, legacy: fields.Salt == nil}
	if fields.Salt != nil {
		r.Salt = *fields.Salt
	}
	return nil
}

// CredentialStore persists credentials.json.
type CredentialStore struct {
	*storage.JSONStore[CredentialRecord]
}

// NewCredentialStore returns a store backed by path.
func NewCredentialStore(path string, opts ...storage.Option) *CredentialStore {
	return &CredentialStore{JSONStore: storage.NewJSONStore[CredentialRecord](path, opts...)}
}

// Get returns the record for username.
func (s *CredentialStore) Get(username string) (CredentialRecord, bool) {
	rec, ok := s.Load()[username]
	return rec, ok
}
