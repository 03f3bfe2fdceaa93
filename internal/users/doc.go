// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package users defines the two per-user records docvault persists and the
// stores that hold them:
//
//   - credentials.json: username -> CredentialRecord {password, salt}
//   - user_data.json:   username -> Profile {created_at, last_login, login_count,
//     permissions, security, notes, settings}
//
// Both stores are storage.JSONStore instances, so loading never fails and
// corrupt files are backed up and reset.
//
// Older files are read transparently: a credential may be a bare password
// string or an object without a salt (see CredentialRecord.IsLegacy), and
// permissions may use the keys leitura, escrita and remocao.
package users
