// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/styles"
)

// Field asks for one value. Secret fields mask what is typed. It is a
// complete tea.Model and quits the program once the user confirms or
// cancels.
type Field struct {
	label     string
	def       string
	textinput textinput.Model
	done      bool
	cancelled bool

	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
}

// NewField creates a field. def is shown as placeholder and returned when
// the user confirms an empty value.
func NewField(s *styles.Styles, label, def string, secret bool) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = def
	ti.CharLimit = 1024
	ti.Width = 50
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()

	return &Field{
		label:     label,
		def:       def,
		textinput: ti,
		styles:    s,
		keys:      keymap.DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init starts the cursor blinking.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keymap.Matches(msg.String(), f.keys.Confirm):
			f.done = true
			return f, tea.Quit
		case keymap.Matches(msg.String(), f.keys.Cancel):
			f.cancelled = true
			return f, tea.Quit
		}
	}
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the field.
func (f *Field) View() string {
	if f.done || f.cancelled {
		return ""
	}
	label := f.styles.Title.Render(f.label + ": ")
	field := f.styles.InputField.Render(f.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	row := lipgloss.JoinHorizontal(lipgloss.Center, label, field)
	return row + "\n" + f.styles.Help.Render(f.help.ShortHelpView(f.keys.InputHelp())) + "\n"
}

// Result returns the typed value, or the default when nothing was typed.
// ok is false when the user cancelled.
func (f *Field) Result() (value string, ok bool) {
	if f.cancelled || !f.done {
		return "", false
	}
	if v := f.textinput.Value(); v != "" {
		return v, true
	}
	return f.def, true
}
