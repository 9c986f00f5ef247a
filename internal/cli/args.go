// args.go - Argument parsing shared by the CLI commands.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// knownBoolFlags never take a value, so "--confirm clear" leaves "clear"
// positional.
var knownBoolFlags = map[string]bool{
	"confirm": true,
	"json":    true,
	"history": true,
	"y":       true,
}

// flagAliases maps short flags to their long names.
var flagAliases = map[string]string{
	"p": "patient",
	"m": "mode",
	"o": "output",
	"f": "format",
	"n": "limit",
}

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positionals.
// It handles these forms:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -p value
//   - Boolean flags: --confirm (no value needed)
//   - Positional arguments: everything else, in order
//
// A lone "--" ends flag parsing; the rest is positional.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw.
//
// Example:
//
//	args := NewArgParser([]string{"export", "conv-1", "--format", "json", "-o=out"})
//	args.Subcommand()      // "export"
//	args.Positional(1)     // "conv-1"
//	args.Flag("format")    // "json"
//	args.Flag("output")    // "out"
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0, len(raw)),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			parser.positional = append(parser.positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value := canonical(name[:eq]), name[eq+1:]
			if knownBoolFlags[name] {
				b, err := ParseBoolString(value)
				parser.boolFlags[name] = err == nil && b
			} else {
				parser.flags[name] = value
			}
			continue
		}

		name = canonical(name)
		if !knownBoolFlags[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			parser.flags[name] = raw[i+1]
			i++
			continue
		}
		parser.boolFlags[name] = true
	}

	if len(parser.positional) > 0 {
		parser.subcommand = strings.ToLower(parser.positional[0])
	}
	return parser
}

func canonical(name string) string {
	if long, ok := flagAliases[name]; ok {
		return long
	}
	return name
}

// Subcommand returns the first positional argument, lowercased.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[canonical(strings.TrimLeft(name, "-"))]
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns the flag as an integer. A flag given without a value is
// an error; an absent flag returns def.
func (p *ArgParser) FlagInt(name string, def int) (int, error) {
	if !p.HasFlag(name) {
		return def, nil
	}
	val := p.Flag(name)
	if val == "" {
		return 0, &ValidationError{Field: name, Reason: "requires a value"}
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: val, Reason: "must be an integer"}
	}
	return n, nil
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[canonical(strings.TrimLeft(name, "-"))]
}

// Positional returns the positional argument at index, or "". Index 0 is
// the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns the positional arguments from index on.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag reports whether the flag appeared in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = canonical(strings.TrimLeft(name, "-"))
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// =============================================================================
// HELPERS
// =============================================================================

// ParseBoolString parses true/false, yes/no, y/n, 1/0 and on/off.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// JoinPositionalArgs joins positional arguments from startIndex with spaces.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
