package dag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// addNode inserts and confirms a node under parent with the given edge type,
// bypassing the start-node rule so tests can build any shape.
func addNode(t *testing.T, tr *dag.Tree, parent int, et dag.EdgeType) *dag.Node {
	t.Helper()
	n, err := dag.Insert(tr, parent, dag.InsertOptions{})
	require.NoError(t, err)
	_, err = dag.Confirm(tr, n.ID)
	require.NoError(t, err)
	n.Template = &template.UnifiedJobTemplate{ID: 100 + n.ID, Type: template.KindJobTemplate}
	n.EdgeType = et
	return n
}

// persisted marks n as loaded from the server.
func persisted(n *dag.Node, id int) *dag.Node {
	n.IsNew = false
	n.PersistedID = id
	return n
}

func childIDs(t *testing.T, tr *dag.Tree, id int) []int {
	t.Helper()
	n, err := dag.Find(tr, id)
	require.NoError(t, err)
	return append([]int{}, n.Children...)
}

func reachable(tr *dag.Tree) map[int]bool {
	seen := make(map[int]bool)
	tr.Walk(func(n *dag.Node) bool {
		seen[n.ID] = true
		return true
	})
	return seen
}
