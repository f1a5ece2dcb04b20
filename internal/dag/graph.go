package dag

// NoParent is the ParentID of the root node. Allocated IDs start at 1.
const NoParent = 0

// Tree holds every node of a workflow under a single root. Nodes are stored
// by ID; structure lives in each node's ParentID and ordered Children.
// All fields are exported so that Clone can copy the whole value.
type Tree struct {
	RootID int           `json:"root_id"`
	Nodes  map[int]*Node `json:"nodes"`

	// TotalNodes counts confirmed non-root nodes.
	TotalNodes int `json:"total_nodes"`
	// DeletedNodes holds persisted IDs of nodes removed since the last save.
	DeletedNodes []int `json:"deleted_nodes"`
	// NextIndex is the next ID to allocate. It never goes backwards.
	NextIndex int `json:"next_index"`
}

// NewTree allocates a tree holding only the root node.
func NewTree() *Tree {
	t := &Tree{
		Nodes:     make(map[int]*Node),
		NextIndex: 1,
	}
	root := &Node{ID: t.allocate(), ParentID: NoParent}
	t.RootID = root.ID
	t.Nodes[root.ID] = root
	return t
}

func (t *Tree) allocate() int {
	id := t.NextIndex
	t.NextIndex++
	return id
}

// Root returns the start node.
func (t *Tree) Root() *Node {
	return t.Nodes[t.RootID]
}

// IsRoot reports whether id is the start node.
func (t *Tree) IsRoot(id int) bool {
	return id == t.RootID
}

// Children returns the direct successors of a node, in order.
func (t *Tree) Children(id int) []*Node {
	n := t.Nodes[id]
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := t.Nodes[cid]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits every node reachable from the root in depth-first pre-order.
// It stops early when fn returns false.
func (t *Tree) Walk(fn func(n *Node) bool) {
	t.walk(t.RootID, fn)
}

func (t *Tree) walk(id int, fn func(n *Node) bool) bool {
	n := t.Nodes[id]
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, cid := range n.Children {
		if !t.walk(cid, fn) {
			return false
		}
	}
	return true
}

// NodeCount returns the number of confirmed non-root nodes reachable from the
// root. Outside an operation it equals TotalNodes.
func (t *Tree) NodeCount() int {
	count := 0
	t.Walk(func(n *Node) bool {
		if n.ID != t.RootID && !n.Placeholder {
			count++
		}
		return true
	})
	return count
}

// Placeholders returns the IDs of unconfirmed nodes, in traversal order.
func (t *Tree) Placeholders() []int {
	var ids []int
	t.Walk(func(n *Node) bool {
		if n.Placeholder {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
