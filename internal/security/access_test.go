// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docvault/internal/users"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		perms  users.Permissions
		action Action
		want   bool
	}{
		{"read granted", users.Permissions{Read: true}, ActionRead, true},
		{"read denied", users.Permissions{Write: true, Delete: true}, ActionRead, false},
		{"write granted", users.Permissions{Write: true}, ActionWrite, true},
		{"write denied", users.Permissions{Read: true}, ActionWrite, false},
		{"delete granted", users.Permissions{Delete: true}, ActionDelete, true},
		{"delete denied", users.Permissions{}, ActionDelete, false},
		{"unknown action", users.AllPermissions(), Action("share"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.perms, tt.action))
		})
	}
}

func TestActions(t *testing.T) {
	assert.Equal(t, []Action{ActionRead, ActionDelete}, Actions(users.Permissions{Read: true, Delete: true}))
	assert.Empty(t, Actions(users.Permissions{}))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Write ")
	require.NoError(t, err)
	assert.Equal(t, ActionWrite, a)

	_, err = ParseAction("admin")
	assert.Error(t, err)
}

func TestThrottle(t *testing.T) {
	var none *Throttle
	assert.True(t, none.Allow("alice"), "nil throttle allows everything")
	assert.Nil(t, NewThrottle(0, 5))

	th := NewThrottle(0.001, 2)
	assert.True(t, th.Allow("alice"))
	assert.True(t, th.Allow("alice"))
	assert.False(t, th.Allow("alice"), "burst exhausted")
	assert.True(t, th.Allow("bob"), "limits are per user")
}
