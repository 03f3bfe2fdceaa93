// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// SaltBytes is the amount of randomness in a salt (128 bits, 32 hex chars).
const SaltBytes = 16

// GenerateSalt returns SaltBytes of crypto/rand output, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, SaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword returns hex(SHA-256(password + salt)).
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether candidate hashes to storedHash under storedSalt.
// SECURITY: constant-time comparison.
func VerifyPassword(storedHash, storedSalt, candidate string) bool {
	got := HashPassword(candidate, storedSalt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}
