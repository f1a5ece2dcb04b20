package dag

// Remove deletes node id and splices its children into the parent's child
// list at the position the node occupied. Children promoted onto the start
// node switch to "always"; elsewhere they keep their edge type.
//
// The persisted ID of a node that was not created this session is recorded
// in DeletedNodes. Removing a placeholder is the same as Discard.
// The removed node is returned so callers can inspect its flags.
func Remove(t *Tree, id int) (*Node, error) {
	if t.IsRoot(id) {
		return nil, ErrRootImmutable
	}
	n, err := Find(t, id)
	if err != nil {
		return nil, err
	}
	if n.Placeholder {
		return n, Discard(t, id)
	}
	parent, err := Find(t, n.ParentID)
	if err != nil {
		return nil, err
	}

	promote(t, parent, n)
	delete(t.Nodes, n.ID)

	if !n.IsNew && n.PersistedID != 0 {
		t.DeletedNodes = append(t.DeletedNodes, n.PersistedID)
	}
	t.TotalNodes--
	return n, nil
}

// promote replaces n in parent's child list with n's children, in order.
func promote(t *Tree, parent, n *Node) {
	pos := indexOf(parent.Children, n.ID)
	if pos < 0 {
		return
	}
	children := make([]int, 0, len(parent.Children)-1+len(n.Children))
	children = append(children, parent.Children[:pos]...)
	children = append(children, n.Children...)
	children = append(children, parent.Children[pos+1:]...)
	parent.Children = children

	for _, cid := range n.Children {
		c := t.Nodes[cid]
		if c == nil {
			continue
		}
		c.ParentID = parent.ID
		if t.IsRoot(parent.ID) {
			c.EdgeType = EdgeAlways
		}
	}
	n.Children = nil
}
