package prompt

import (
	"os"

	"golang.org/x/term"

	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// New returns a Picker when both streams are terminals and a Line
// prompter otherwise.
func New(in, out *os.File) driven.Prompter {
	if IsTerminal(in) && IsTerminal(out) {
		return NewPicker(in, out)
	}
	return NewLine(in, out)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
