package models

// Action is what the sync driver does with one destination event.
type Action int

const (
	NoOp Action = iota
	MarkAttending
)

func (a Action) String() string {
	if a == MarkAttending {
		return "mark_attending"
	}
	return "noop"
}

// SyncDecision is computed per run and never persisted.
type SyncDecision struct {
	EventID string
	Title   string
	Action  Action
}

// SyncResult is the outcome of applying one decision. Err is set only when a
// MarkAttending write failed.
type SyncResult struct {
	Decision SyncDecision
	Err      error
}
