package domain

import "fmt"

// Interaction declares how a caller wants an operation to behave.
// It replaces a process-wide "interactive" switch: every operation receives
// its own value.
type Interaction struct {
	// Interactive allows the operation to prompt a human for missing input
	// or for a selection. When false, the operation fails fast instead.
	Interactive bool

	// HumanReadable asks for confirmation text in Outcome.Message.
	HumanReadable bool
}

// Scripted is the interaction mode of machine callers: no prompts and
// structured results only.
var Scripted = Interaction{}

// Terminal is the interaction mode of a human at a terminal.
var Terminal = Interaction{Interactive: true, HumanReadable: true}

// EntityKind names the kind of metadata entity an operation acted on.
type EntityKind string

// Entity kinds.
const (
	KindService    EntityKind = "service"
	KindAuthApp    EntityKind = "auth app"
	KindContentSet EntityKind = "content set"
)

// Plural returns the plural noun for the kind.
func (k EntityKind) Plural() string {
	return string(k) + "s"
}

// Outcome is the result of a mutating operation.
type Outcome struct {
	// Kind is the kind of entity that was changed.
	Kind EntityKind `json:"kind"`
	// Op is the past-tense verb describing the change ("enabled", "deleted").
	Op string `json:"op"`
	// IDs lists the entities that were changed, in resolution order.
	IDs []ID `json:"ids"`
	// Message is the confirmation text; empty for non human-readable callers.
	Message string `json:"message,omitempty"`
}

// NewOutcome builds an outcome and fills Message when the caller asked for
// human-readable results.
func NewOutcome(mode Interaction, kind EntityKind, op string, ids []ID) Outcome {
	out := Outcome{Kind: kind, Op: op, IDs: ids}
	if mode.HumanReadable {
		out.Message = Confirmation(kind, op, len(ids))
	}
	return out
}

// Confirmation renders "The service has been enabled." or, for batches,
// "The services have been enabled.".
func Confirmation(kind EntityKind, op string, count int) string {
	if count == 1 {
		return fmt.Sprintf("The %s has been %s.", kind, op)
	}
	return fmt.Sprintf("The %s have been %s.", kind.Plural(), op)
}
