// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// ErrNoSettingsService is returned when the view has no settings service.
var ErrNoSettingsService = errors.New("settings service not available")

// Key constants for key handling.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// saved is sent after a value was stored.
type saved struct {
	key string
	err error
}

// View lists settings with their source and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	values []driving.SettingValue
	path   string
	err    error
	notice string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		values, err := svc.Values()
		return messages.SettingsLoaded{Values: values, Path: svc.ConfigPath(), Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.values = msg.Values
		v.path = msg.Path
		if v.selected >= len(v.values) {
			v.selected = 0
		}
		return v, nil

	case saved:
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.notice = fmt.Sprintf("Saved %s. Restart to apply.", msg.key)
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyUp, "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.values)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected < len(v.values) {
			v.startEditing(v.values[v.selected])
			return v, v.input.Focus()
		}
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.editing = false
		v.input.Blur()
		return v, nil
	case keyEnter:
		v.editing = false
		v.input.Blur()
		return v, v.save(v.values[v.selected].Key, v.input.Value())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) startEditing(sv driving.SettingValue) {
	v.editing = true
	v.notice = ""
	v.err = nil
	v.input.Reset()
	if strings.HasSuffix(sv.Key, "api_key") {
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "Enter API key"
	} else {
		v.input.EchoMode = textinput.EchoNormal
		v.input.Placeholder = "empty resets to default"
		v.input.SetValue(sv.Value)
	}
}

func (v *View) save(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return saved{key: key, err: ErrNoSettingsService}
		}
		return saved{key: key, err: svc.Set(key, value)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n")
	if v.path != "" {
		b.WriteString(v.styles.Muted.Render(v.path))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	for i, sv := range v.values {
		value := sv.Value
		if value == "" {
			value = "(not set)"
		}
		line := fmt.Sprintf("%-30s %s", sv.Key, value)
		if sv.Source != driving.SettingSourceDefault {
			line += v.styles.Muted.Render(" [" + sv.Source + "]")
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")

		if v.editing && i == v.selected {
			b.WriteString("    " + v.styles.InputField.Render(v.input.View()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] edit  [esc] back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Values returns the loaded settings.
func (v *View) Values() []driving.SettingValue {
	return v.values
}

// Editing returns true while a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last status notice.
func (v *View) Notice() string {
	return v.notice
}

// Reset returns to the list, discarding any edit.
func (v *View) Reset() {
	v.editing = false
	v.notice = ""
	v.err = nil
	v.input.Blur()
}
