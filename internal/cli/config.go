// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "config" command.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/carepath/carepath-tui/internal/config"
)

const configUsage = "carepath config [show|path|keys|get <key>|set <key> <value>]"

// ConfigValue is the JSON payload of "config get" and "config set".
type ConfigValue struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
	Path  string      `json:"path,omitempty"`
}

// HandleConfig handles the "config" command.
func HandleConfig(env *Env, args Args) error {
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "show":
		return configShow(env, args)
	case "path":
		return configPath(env, args)
	case "keys":
		if args.JSON {
			return NewJSONResponse("config", config.Keys()).Write(env.Out)
		}
		fmt.Fprintln(env.Out, strings.Join(config.Keys(), "\n"))
		return nil
	case "get":
		return configGet(env, args, p)
	case "set":
		return configSet(env, args, p)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand: %s", p.Subcommand()),
			Hint:    "Usage: " + configUsage,
		}
	}
}

// configShow prints the effective configuration, environment overrides
// included.
func configShow(env *Env, args Args) error {
	if args.JSON {
		return NewJSONResponse("config", env.Config).Write(env.Out)
	}
	path, _ := config.ConfigPathTOML()
	fmt.Fprintln(env.Out, DimStyle.Render("# effective configuration; file: "+path))
	return toml.NewEncoder(env.Out).Encode(env.Config)
}

func configPath(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if args.JSON {
		_, statErr := os.Stat(path)
		return NewJSONResponse("config", map[string]interface{}{
			"path":   path,
			"exists": statErr == nil,
		}).Write(env.Out)
	}
	fmt.Fprintln(env.Out, path)
	return nil
}

func configGet(env *Env, args Args, p *ArgParser) error {
	key := p.Positional(1)
	if key == "" {
		return ErrMissingArgument("key", "carepath config get <key>")
	}
	val, err := env.Config.Get(key)
	if err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "carepath config keys"}
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigValue{Key: key, Value: val}).Write(env.Out)
	}
	fmt.Fprintln(env.Out, formatValue(val))
	return nil
}

// configSet edits the config file only. Environment overrides in effect
// for this run are not written back.
func configSet(env *Env, args Args, p *ArgParser) error {
	key, value := p.Positional(1), JoinPositionalArgs(p, 2)
	if key == "" || p.PositionalCount() < 3 {
		return ErrMissingArgument("key and value", "carepath config set <key> <value>")
	}

	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "carepath config keys"}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}

	saved, _ := cfg.Get(key)
	if args.JSON {
		return NewJSONResponse("config", ConfigValue{Key: key, Value: saved, Path: path}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s = %s\n", SuccessStyle.Render("Set"), key, formatValue(saved))
	fmt.Fprintln(env.Out, DimStyle.Render("Saved to "+path))
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
