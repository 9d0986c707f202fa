// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Back returns to the previous view, or stops a streaming answer.
	Back key.Binding

	// Send submits the question being typed.
	Send key.Binding

	// Up and Down navigate lists and scroll the transcript.
	Up   key.Binding
	Down key.Binding

	// Passages toggles the retrieved passages of the last answer.
	Passages key.Binding

	// Clear starts a new conversation.
	Clear key.Binding

	// Reindex rebuilds the vector index.
	Reindex key.Binding

	// Open opens the selected document.
	Open key.Binding

	// Remove deletes the selected document.
	Remove key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Passages: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "passages"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "new chat"),
		),
		Reindex: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reindex"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
	}
}

// ChatHelp returns the keybindings shown in the chat status bar.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.Passages, k.Clear, k.Back}
}

// StreamingHelp returns the keybindings shown while an answer streams.
func (k *KeyMap) StreamingHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		k.Quit,
	}
}

// DocumentsHelp returns the keybindings for the documents view.
func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Remove, k.Reindex, k.Back}
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
