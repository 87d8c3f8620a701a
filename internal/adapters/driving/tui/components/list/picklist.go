// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/styles"
)

// PickList lets the user choose one entry, or several when multi is set.
// It is a complete tea.Model and quits the program once the user confirms
// or cancels.
type PickList struct {
	title     string
	options   []string
	multi     bool
	cursor    int
	checked   map[int]bool
	done      bool
	cancelled bool
	height    int

	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
}

// NewPickList creates a pick list over options.
func NewPickList(s *styles.Styles, title string, options []string, multi bool) *PickList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &PickList{
		title:   title,
		options: options,
		multi:   multi,
		checked: make(map[int]bool),
		height:  12,
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init initialises the list.
func (p *PickList) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection keys.
func (p *PickList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.height = msg.Height - 4
	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case keymap.Matches(k, p.keys.Up):
			p.MoveUp()
		case keymap.Matches(k, p.keys.Down):
			p.MoveDown()
		case p.multi && keymap.Matches(k, p.keys.Toggle):
			p.checked[p.cursor] = !p.checked[p.cursor]
		case p.multi && keymap.Matches(k, p.keys.All):
			for i := range p.options {
				p.checked[i] = true
			}
		case keymap.Matches(k, p.keys.Confirm):
			if len(p.options) == 0 {
				p.cancelled = true
			}
			p.done = true
			return p, tea.Quit
		}
	}
	return p, nil
}

// View renders the list.
func (p *PickList) View() string {
	if p.done || p.cancelled {
		return ""
	}
	lines := []string{p.styles.Title.Render(p.title), ""}
	if len(p.options) == 0 {
		lines = append(lines, p.styles.Muted.Render("Nothing to choose from"))
	}

	visible := p.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := start + visible
	if end > len(p.options) {
		end = len(p.options)
	}

	for i := start; i < end; i++ {
		lines = append(lines, p.renderOption(i))
	}

	bindings := p.keys.SingleHelp()
	if p.multi {
		bindings = p.keys.MultiHelp()
	}
	lines = append(lines, "", p.styles.Help.Render(p.help.ShortHelpView(bindings)))
	return strings.Join(lines, "\n") + "\n"
}

func (p *PickList) renderOption(i int) string {
	mark := ""
	if p.multi {
		mark = "[ ] "
		if p.checked[i] {
			mark = p.styles.Checked.Render("[x]") + " "
		}
	}
	text := fmt.Sprintf("%d) %s", i+1, p.options[i])
	if i == p.cursor {
		return "> " + mark + p.styles.Cursor.Render(text)
	}
	return "  " + mark + p.styles.Normal.Render(text)
}

// MoveUp moves the cursor up.
func (p *PickList) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor down.
func (p *PickList) MoveDown() {
	if p.cursor < len(p.options)-1 {
		p.cursor++
	}
}

// Cursor returns the index under the cursor.
func (p *PickList) Cursor() int {
	return p.cursor
}

// Result returns the chosen indexes in ascending order. ok is false when
// the user cancelled or the list has not been confirmed. A multi list
// confirmed with nothing marked yields the entry under the cursor.
func (p *PickList) Result() (picked []int, ok bool) {
	if p.cancelled || !p.done {
		return nil, false
	}
	if !p.multi {
		return []int{p.cursor}, true
	}
	for i, on := range p.checked {
		if on {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		return []int{p.cursor}, true
	}
	sort.Ints(picked)
	return picked, true
}
