package dag

import "errors"

var (
	// ErrNodeNotFound means the node no longer exists (deleted, or never
	// existed). Callers abort the operation rather than surface it.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRootImmutable is returned when an operation would delete or edit the start node.
	ErrRootImmutable = errors.New("the start node cannot be modified")

	// ErrInvalidEdge is returned when a splice names a parent/child pair that is not linked.
	ErrInvalidEdge = errors.New("nodes are not directly linked")

	// ErrNotPlaceholder is returned when confirming or discarding a node that is already confirmed.
	ErrNotPlaceholder = errors.New("node is not a placeholder")

	// ErrPendingPlaceholder is returned when serializing a tree that holds an unconfirmed node.
	ErrPendingPlaceholder = errors.New("tree has an unconfirmed node")

	// ErrMissingTemplate is returned when serializing a node that references no template.
	ErrMissingTemplate = errors.New("node has no unified job template")

	// ErrEdgeTypeNotAllowed is returned when a child of the start node is given
	// an edge type other than "always".
	ErrEdgeTypeNotAllowed = errors.New("edge type not allowed here")
)
