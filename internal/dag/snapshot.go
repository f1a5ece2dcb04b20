package dag

import "github.com/mohae/deepcopy"

// Clone returns a structural deep copy of the tree. Editing the copy never
// affects the original, which is what session revert relies on.
func (t *Tree) Clone() *Tree {
	return deepcopy.Copy(t).(*Tree)
}
