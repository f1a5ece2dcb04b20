package dag

import "fmt"

// Find returns the live node with the given ID, searching depth-first from the
// root. Only nodes attached to the tree are found.
func Find(t *Tree, id int) (*Node, error) {
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}
	return found, nil
}

// Path returns the IDs from the root down to id, inclusive.
func Path(t *Tree, id int) ([]int, error) {
	n, err := Find(t, id)
	if err != nil {
		return nil, err
	}
	var path []int
	for cur := n; cur != nil; cur = t.Nodes[cur.ParentID] {
		path = append(path, cur.ID)
		if cur.ParentID == NoParent {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
