// Package keymap defines the keybindings of restgate's terminal pickers.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the picker keybindings.
type KeyMap struct {
	// Up moves the cursor up.
	Up key.Binding

	// Down moves the cursor down.
	Down key.Binding

	// Toggle marks or unmarks the entry under the cursor (multi-select).
	Toggle key.Binding

	// All marks every entry (multi-select).
	All key.Binding

	// Confirm accepts the selection or the typed value.
	Confirm key.Binding

	// Cancel aborts the prompt.
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// SingleHelp returns the bindings shown when picking one entry.
func (k *KeyMap) SingleHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Confirm, k.Cancel}
}

// MultiHelp returns the bindings shown when picking several entries.
func (k *KeyMap) MultiHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Cancel}
}

// InputHelp returns the bindings shown while typing a value.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
