// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docvault/internal/users"
)

// Action is an operation guarded by a permission.
type Action string

const (
	// ActionRead opens a document.
	ActionRead Action = "read"

	// ActionWrite creates or edits a document.
	ActionWrite Action = "write"

	// ActionDelete removes a document.
	ActionDelete Action = "delete"
)

// AllActions lists every action in display order.
var AllActions = []Action{ActionRead, ActionWrite, ActionDelete}

// ParseAction accepts "read", "write" or "delete" in any case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionRead, ActionWrite, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q (use read, write or delete)", s)
}

// Can reports whether perms allow action. Unknown actions are denied.
func Can(perms users.Permissions, action Action) bool {
	switch action {
	case ActionRead:
		return perms.Read
	case ActionWrite:
		return perms.Write
	case ActionDelete:
		return perms.Delete
	default:
		return false
	}
}

// Actions returns the actions perms allow, in AllActions order.
func Actions(perms users.Permissions) []Action {
	var out []Action
	for _, a := range AllActions {
		if Can(perms, a) {
			out = append(out, a)
		}
	}
	return out
}
