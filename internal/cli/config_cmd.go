// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The "config" command.
//
// Subcommands:
//   show (default)        Print the effective configuration as TOML
//   path                  Show the config file and data locations
//   init [--force]        Write a default config file
//   get <key>             Print one setting
//   set <key> <value>     Change one setting and save the config file
//
// Keys use dot notation with snake_case or kebab-case names, for example
// security.max_login_attempts or logging.format.

package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/docvault/internal/config"
)

const configUsage = `  docvault config show
  docvault config path
  docvault config init [--force]
  docvault config get <key>
  docvault config set <key> <value>`

// HandleConfig handles the "config" command.
func (a *App) HandleConfig(args Args) error {
	p := NewArgParser(args.Raw, "json", "force")
	if p.BoolFlag("json") {
		args.JSON = true
	}

	switch p.Subcommand() {
	case "", "show":
		return a.emit(args, "config show", a.Config, func() {
			fmt.Fprint(a.Stdout, a.Config.String())
		})
	case "path":
		return a.configPath(args)
	case "init":
		return a.configInit(args, p.BoolFlag("force"))
	case "get":
		return a.configGet(args, p.Positional(1))
	case "set":
		if p.PositionalCount() < 3 {
			return usageErrorf(configUsage, "config set needs a key and a value")
		}
		return a.configSet(args, p.Positional(1), strings.Join(p.PositionalFrom(2), " "))
	case "keys":
		return a.emit(args, "config keys", config.Keys(), func() {
			for _, k := range config.Keys() {
				fmt.Fprintln(a.Stdout, k)
			}
		})
	default:
		return usageErrorf(configUsage, "unknown config subcommand: %s", p.Subcommand())
	}
}

// configFile is the file config init and config set write: --config if
// given, else ~/.docvault/config.toml.
func (a *App) configFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func (a *App) configPath(args Args) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	file, err := a.configFile(args)
	if err != nil {
		return err
	}
	data := ConfigPathData{
		ConfigDir:   dir,
		ConfigFile:  file,
		Exists:      config.Exists(file),
		DataDir:     a.Config.Data.Dir,
		Credentials: a.Config.CredentialsPath(),
		Profiles:    a.Config.ProfilesPath(),
		Documents:   a.Config.DocumentsPath(),
	}

	return a.emit(args, "config path", data, func() {
		exists := DimStyle.Render("(not created)")
		if data.Exists {
			exists = ""
		}
		fmt.Fprintln(a.Stdout, RenderField("Config dir:", data.ConfigDir))
		fmt.Fprintln(a.Stdout, RenderField("Config file:", data.ConfigFile+" "+exists))
		fmt.Fprintln(a.Stdout, RenderField("Data dir:", data.DataDir))
		fmt.Fprintln(a.Stdout, RenderField("Credentials:", data.Credentials))
		fmt.Fprintln(a.Stdout, RenderField("Profiles:", data.Profiles))
		fmt.Fprintln(a.Stdout, RenderField("Documents:", data.Documents))
	})
}

func (a *App) configInit(args Args, force bool) error {
	file, err := a.configFile(args)
	if err != nil {
		return err
	}
	if config.Exists(file) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", file)
	}
	if err := config.Save(config.Default(), file); err != nil {
		return err
	}
	return a.emit(args, "config init", ConfigPathData{ConfigFile: file, Exists: true}, func() {
		fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("Wrote"), file)
	})
}

func (a *App) configGet(args Args, key string) error {
	if key == "" {
		return usageErrorf(configUsage, "config get needs a key")
	}
	value, err := a.Config.Get(key)
	if err != nil {
		return err
	}
	return a.emit(args, "config get", ConfigValueData{Key: key, Value: value}, func() {
		fmt.Fprintln(a.Stdout, value)
	})
}

// configSet edits the config file on disk, not the effective configuration,
// so environment overrides are not written back.
func (a *App) configSet(args Args, key, value string) error {
	file, err := a.configFile(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if config.Exists(file) {
		if strings.HasSuffix(file, ".json") {
			err = config.LoadJSON(cfg, file)
		} else {
			err = config.LoadTOML(cfg, file)
		}
		if err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(cfg, file); err != nil {
		return err
	}
	a.Logger.Info("config updated", "key", key, "file", file)

	newValue, _ := cfg.Get(key)
	return a.emit(args, "config set", ConfigValueData{Key: key, Value: newValue}, func() {
		fmt.Fprintf(a.Stdout, "%s %s = %v (%s)\n", SuccessStyle.Render("Set"), key, newValue, filepath.Base(file))
	})
}
