package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict blocks saving while sibling edge types are mixed.
	ErrConflict = errors.New("workflow has edge-type conflicts")

	// ErrPlaceholderPending is returned when adding a node while another add is unconfirmed.
	ErrPlaceholderPending = errors.New("another node is still being added")

	// ErrNoActiveEdit is returned when an event targets a node whose form is not open.
	ErrNoActiveEdit = errors.New("node is not open for editing")

	// ErrTemplateRequired is returned when confirming a node without choosing a template.
	ErrTemplateRequired = errors.New("a unified job template is required")

	// ErrStaleResult marks a fetch result that arrived after its node was
	// deleted, left edit mode, or switched to another template.
	ErrStaleResult = errors.New("stale fetch result")

	// ErrNotSaved is returned by Commit when no Save preceded it.
	ErrNotSaved = errors.New("nothing saved to commit")

	// ErrQueueFull is returned when the fetch queue cannot take another request.
	ErrQueueFull = errors.New("fetch queue full")

	ErrSessionNotFound  = errors.New("session not found")
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// FetchError is an upstream failure while resolving detail for the node being
// edited. It is shown to the user until the fetch is retried.
type FetchError struct {
	Kind   FetchKind
	ID     int
	NodeID int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %d for node %d: %v", e.Kind, e.ID, e.NodeID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
