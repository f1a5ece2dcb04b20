package dag

// Conflicts returns, in traversal order, the IDs of nodes whose children mix
// "always" with "success"/"failure". Nodes with fewer than two children
// cannot conflict.
func Conflicts(t *Tree) []int {
	var ids []int
	t.Walk(func(n *Node) bool {
		if len(n.Children) < 2 {
			return true
		}
		types := make(EdgeSet, 3)
		for _, c := range t.Children(n.ID) {
			if c.EdgeType != "" {
				types[c.EdgeType] = struct{}{}
			}
		}
		if mixed(types) {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// DetectConflicts scans the whole tree, flags EdgeConflict on the children of
// every conflicting node (clearing it everywhere else), and reports whether
// any conflict exists. A conflicted tree stays editable; it just cannot be saved.
func DetectConflicts(t *Tree) bool {
	conflicted := make(map[int]bool)
	for _, id := range Conflicts(t) {
		conflicted[id] = true
	}
	t.Walk(func(n *Node) bool {
		n.EdgeConflict = !t.IsRoot(n.ID) && conflicted[n.ParentID]
		return true
	})
	return len(conflicted) > 0
}

func mixed(types EdgeSet) bool {
	return (types.Has(EdgeSuccess) || types.Has(EdgeFailure)) && types.Has(EdgeAlways)
}
