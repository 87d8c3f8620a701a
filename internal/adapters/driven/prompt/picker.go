package prompt

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/restgate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// Ensure Picker implements the interface.
var _ driven.Prompter = (*Picker)(nil)

// Picker prompts with inline bubbletea widgets: an arrow-key
// list for selections and masked fields for secrets.
type Picker struct {
	in     io.Reader
	out    io.Writer
	styles *styles.Styles
}

// NewPicker creates a picker reading keys from in and drawing to out.
func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{in: in, out: out, styles: styles.DefaultStyles()}
}

// Select shows a pick list.
func (p *Picker) Select(ctx context.Context, title string, options []string, multi bool) ([]int, error) {
	if len(options) == 0 {
		return nil, domain.ErrOperationCancelled
	}
	model := list.NewPickList(p.styles, title, options, multi)
	if err := p.run(ctx, model); err != nil {
		return nil, err
	}
	picked, ok := model.Result()
	if !ok {
		return nil, domain.ErrOperationCancelled
	}
	return picked, nil
}

// Input shows a text field.
func (p *Picker) Input(ctx context.Context, label, def string) (string, error) {
	return p.field(ctx, input.NewField(p.styles, label, def, false))
}

// Secret shows a masked text field.
func (p *Picker) Secret(ctx context.Context, label string) (string, error) {
	return p.field(ctx, input.NewField(p.styles, label, "", true))
}

func (p *Picker) field(ctx context.Context, model *input.Field) (string, error) {
	if err := p.run(ctx, model); err != nil {
		return "", err
	}
	value, ok := model.Result()
	if !ok {
		return "", domain.ErrOperationCancelled
	}
	return value, nil
}

func (p *Picker) run(ctx context.Context, model tea.Model) error {
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	_, err := prog.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrInterrupted), errors.Is(err, tea.ErrProgramKilled):
		return cancelled(err)
	default:
		return err
	}
}
