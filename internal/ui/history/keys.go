// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the history view's bindings. Row movement is handled by
// the table's own key map.
type KeyMap struct {
	Prev       key.Binding
	Next       key.Binding
	Retry      key.Binding
	Open       key.Binding
	Back       key.Binding
	Filter     key.Binding
	Export     key.Binding
	ExportJSON key.Binding
	Help       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "previous page"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", "n"),
			key.WithHelp("→/n", "next page"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter by patient"),
		),
		Export: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save markdown"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save json"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Open, k.Filter, k.Retry, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Retry},
		{k.Open, k.Back, k.Filter},
		{k.Export, k.ExportJSON, k.Help},
	}
}

// detailHelp is the key map shown in the detail pane.
type detailHelp struct{ k KeyMap }

func (d detailHelp) ShortHelp() []key.Binding {
	return []key.Binding{d.k.Back, d.k.Export, d.k.ExportJSON}
}

func (d detailHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{d.ShortHelp()}
}
