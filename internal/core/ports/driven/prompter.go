package driven

import "context"

// Prompter asks a human for input during interactive operations.
// Every method returns domain.ErrOperationCancelled when the user aborts.
type Prompter interface {
	// Select shows a titled list and returns the chosen indexes. With multi
	// set, the user may pick several entries or "*" for all of them.
	Select(ctx context.Context, title string, options []string, multi bool) ([]int, error)

	// Input asks for a line of text. An empty answer yields def.
	Input(ctx context.Context, label, def string) (string, error)

	// Secret asks for a value without echoing it.
	Secret(ctx context.Context, label string) (string, error)
}
