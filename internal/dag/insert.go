package dag

import "fmt"

// InsertOptions selects how Insert places the new node.
type InsertOptions struct {
	// Between, when set, splices the new node into this existing edge.
	// Between.ParentID must equal the parentID passed to Insert.
	Between *Edge
}

// Insert creates a placeholder node under parentID and returns it.
//
// Without Between the placeholder is appended as the last child and gets
// DefaultEdgeType. With Between the placeholder takes the child's slot and
// incoming edge type, and the displaced child hangs off the placeholder with
// an "always" edge.
//
// TotalNodes is not touched; Confirm counts the node, Discard drops it.
func Insert(t *Tree, parentID int, opts InsertOptions) (*Node, error) {
	parent, err := Find(t, parentID)
	if err != nil {
		return nil, err
	}

	n := &Node{
		ParentID:    parent.ID,
		IsNew:       true,
		Placeholder: true,
	}

	if opts.Between == nil {
		et, err := DefaultEdgeType(t, parent.ID, NoParent)
		if err != nil {
			return nil, err
		}
		n.ID = t.allocate()
		n.EdgeType = et
		parent.Children = append(parent.Children, n.ID)
		t.Nodes[n.ID] = n
		return n, nil
	}

	if opts.Between.ParentID != parent.ID {
		return nil, fmt.Errorf("splice %d→%d under %d: %w", opts.Between.ParentID, opts.Between.ChildID, parent.ID, ErrInvalidEdge)
	}
	child, err := Find(t, opts.Between.ChildID)
	if err != nil {
		return nil, err
	}
	pos := indexOf(parent.Children, child.ID)
	if child.ParentID != parent.ID || pos < 0 {
		return nil, fmt.Errorf("splice %d→%d: %w", parent.ID, child.ID, ErrInvalidEdge)
	}

	n.ID = t.allocate()
	n.EdgeType = child.EdgeType
	if t.IsRoot(parent.ID) {
		n.EdgeType = EdgeAlways
	}
	n.Children = []int{child.ID}
	n.Splice = &Splice{ChildID: child.ID, EdgeType: child.EdgeType}

	child.ParentID = n.ID
	child.EdgeType = EdgeAlways
	parent.Children[pos] = n.ID
	t.Nodes[n.ID] = n
	return n, nil
}

// Confirm turns a placeholder into a regular node and counts it.
func Confirm(t *Tree, id int) (*Node, error) {
	n, err := Find(t, id)
	if err != nil {
		return nil, err
	}
	if !n.Placeholder {
		return nil, fmt.Errorf("confirm node %d: %w", id, ErrNotPlaceholder)
	}
	n.Placeholder = false
	n.Splice = nil
	t.TotalNodes++
	return n, nil
}

// Discard removes a placeholder, restoring the edge it was spliced into.
// Its ID is not reused and nothing is recorded for deletion.
func Discard(t *Tree, id int) error {
	n, err := Find(t, id)
	if err != nil {
		return err
	}
	if !n.Placeholder {
		return fmt.Errorf("discard node %d: %w", id, ErrNotPlaceholder)
	}
	parent, err := Find(t, n.ParentID)
	if err != nil {
		return err
	}
	if n.Splice != nil {
		if child := t.Nodes[n.Splice.ChildID]; child != nil && child.ParentID == n.ID {
			child.EdgeType = n.Splice.EdgeType
		}
	}
	promote(t, parent, n)
	delete(t.Nodes, n.ID)
	return nil
}
