package dag

import (
	"fmt"

	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// Update is the content of a submitted node form.
type Update struct {
	// Template replaces the node's template; nil leaves it unchanged.
	Template *template.UnifiedJobTemplate
	Prompts  PromptValues
	EdgeType EdgeType
}

// Apply writes u onto node id. Children of the start node must use "always";
// any other valid edge type is accepted, since sibling conflicts are advisory.
// Nodes that were already persisted are marked Edited.
func Apply(t *Tree, id int, u Update) (*Node, error) {
	if t.IsRoot(id) {
		return nil, ErrRootImmutable
	}
	n, err := Find(t, id)
	if err != nil {
		return nil, err
	}
	if !u.EdgeType.Valid() {
		return nil, fmt.Errorf("node %d: edge type %q: %w", id, u.EdgeType, ErrEdgeTypeNotAllowed)
	}
	if t.IsRoot(n.ParentID) && u.EdgeType != EdgeAlways {
		return nil, fmt.Errorf("node %d: edge type %q under the start node: %w", id, u.EdgeType, ErrEdgeTypeNotAllowed)
	}
	if u.Template != nil {
		tmpl := *u.Template
		n.Template = &tmpl
	}
	n.Prompts = u.Prompts
	n.EdgeType = u.EdgeType
	if !n.IsNew {
		n.Edited = true
	}
	return n, nil
}
