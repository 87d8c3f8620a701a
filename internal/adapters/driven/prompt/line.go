// Package prompt implements driven.Prompter for terminals and plain
// streams.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// Ensure Line implements the interface.
var _ driven.Prompter = (*Line)(nil)

// Line prompts with numbered lists and line input. It works on any
// reader, which makes it the prompter for pipes and tests.
type Line struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // terminal descriptor for hidden input, -1 when none
}

// NewLine creates a line prompter. Secrets are read without echo when in
// is a terminal.
func NewLine(in io.Reader, out io.Writer) *Line {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Line{in: bufio.NewReader(in), out: out, fd: fd}
}

// Select prints the options and reads a choice. In multi mode the answer
// may list several numbers ("1,3" or "1 3") or "*" for all of them. An
// empty answer cancels.
func (l *Line) Select(ctx context.Context, title string, options []string, multi bool) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%s: nothing to choose from: %w", title, domain.ErrOperationCancelled)
	}

	fmt.Fprintln(l.out, title)
	for i, opt := range options {
		fmt.Fprintf(l.out, "  %d. %s\n", i+1, opt)
	}
	if multi {
		fmt.Fprintf(l.out, "\nSelect numbers (comma separated, * for all): ")
	} else {
		fmt.Fprintf(l.out, "\nSelect number: ")
	}

	input, err := l.readLine()
	if err != nil {
		return nil, err
	}
	if input == "" {
		return nil, domain.ErrOperationCancelled
	}
	return parseSelection(input, len(options), multi)
}

// parseSelection converts "2", "1,3" or "*" into zero-based indexes.
func parseSelection(input string, count int, multi bool) ([]int, error) {
	if multi && input == "*" {
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' })
	if !multi && len(fields) != 1 {
		return nil, fmt.Errorf("%w: invalid selection: %s", domain.ErrValidation, input)
	}
	seen := make(map[int]bool)
	picked := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > count {
			return nil, fmt.Errorf("%w: invalid selection: %s", domain.ErrValidation, input)
		}
		if !seen[n-1] {
			seen[n-1] = true
			picked = append(picked, n-1)
		}
	}
	return picked, nil
}

// Input reads one line. An empty answer yields def.
func (l *Line) Input(ctx context.Context, label, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", cancelled(err)
	}
	if def != "" {
		fmt.Fprintf(l.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(l.out, "%s: ", label)
	}
	input, err := l.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return def, nil
	}
	return input, nil
}

// Secret reads a value without echo when attached to a terminal.
func (l *Line) Secret(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", cancelled(err)
	}
	fmt.Fprintf(l.out, "%s: ", label)
	if l.fd >= 0 {
		secret, err := term.ReadPassword(l.fd)
		fmt.Fprintln(l.out)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", label, err)
		}
		return string(secret), nil
	}
	return l.readLine()
}

// readLine returns the next trimmed line. End of input cancels.
func (l *Line) readLine() (string, error) {
	input, err := l.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", domain.ErrOperationCancelled
		}
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrOperationCancelled, err)
}
