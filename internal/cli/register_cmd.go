// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// register_cmd.go - The "register" command.
//
// Command: register <user> [--read] [--write] [--delete] [--all] [--perms LIST]
//
// Examples:
//   docvault register alice --read --write
//   docvault register carol --perms read,delete
//   docvault register admin --all
//   printf 'secret1\n' | docvault register bob --read

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/docvault/internal/auth"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/users"
)

const registerUsage = "  docvault register <user> [--read] [--write] [--delete] [--all] [--perms read,write,delete]"

// ErrPasswordMismatch is returned when the confirmation differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// HandleRegister creates an account. The password is prompted for; on a
// terminal it is asked twice.
func (a *App) HandleRegister(args Args) error {
	p := NewArgParser(args.Raw, "read", "write", "delete", "all")
	username := p.Positional(0)
	if username == "" {
		return usageErrorf(registerUsage, "username required")
	}
	if p.PositionalCount() > 1 {
		return usageErrorf(registerUsage, "unexpected argument: %s", p.Positional(1))
	}

	perms, err := registerPermissions(p)
	if err != nil {
		return usageErrorf(registerUsage, "%v", err)
	}

	if a.Auth.Exists(username) {
		// Fail before prompting for a password that would be thrown away.
		return fmt.Errorf("register %s: %w", username, auth.ErrUserExists)
	}

	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}
	if a.stdinIsTerminal() {
		confirm, err := a.readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return ErrPasswordMismatch
		}
	}

	if err := a.Auth.Register(username, password, perms); err != nil {
		return err
	}

	return a.emit(args, "register", RegisterData{Username: username, Permissions: perms}, func() {
		fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("Registered"), username)
		fmt.Fprintln(a.Stdout, RenderField("Read:", RenderFlag(perms.Read)))
		fmt.Fprintln(a.Stdout, RenderField("Write:", RenderFlag(perms.Write)))
		fmt.Fprintln(a.Stdout, RenderField("Delete:", RenderFlag(perms.Delete)))
	})
}

// registerPermissions combines --all, --perms and the single-permission flags.
func registerPermissions(p *ArgParser) (users.Permissions, error) {
	if p.BoolFlag("all") {
		return users.AllPermissions(), nil
	}
	perms := users.Permissions{
		Read:   p.BoolFlag("read"),
		Write:  p.BoolFlag("write"),
		Delete: p.BoolFlag("delete"),
	}
	if list := p.Flag("perms"); list != "" {
		for _, name := range strings.Split(list, ",") {
			action, err := security.ParseAction(name)
			if err != nil {
				return users.Permissions{}, err
			}
			switch action {
			case security.ActionRead:
				perms.Read = true
			case security.ActionWrite:
				perms.Write = true
			case security.ActionDelete:
				perms.Delete = true
			}
		}
	}
	return perms, nil
}
