package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
)

func TestRemove_PromotesChildrenInPlace(t *testing.T) {
	for _, tc := range []struct {
		name        string
		persistedID int
		wantDeleted []int
	}{
		{"persisted node", 77, []int{77}},
		{"new node", 0, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr := dag.NewTree()
			p := addNode(t, tr, tr.RootID, dag.EdgeAlways)
			w := addNode(t, tr, p.ID, dag.EdgeSuccess)
			x := addNode(t, tr, p.ID, dag.EdgeSuccess)
			v := addNode(t, tr, p.ID, dag.EdgeFailure)
			y := addNode(t, tr, x.ID, dag.EdgeSuccess)
			z := addNode(t, tr, x.ID, dag.EdgeFailure)
			if tc.persistedID != 0 {
				persisted(x, tc.persistedID)
			}
			total := tr.TotalNodes

			removed, err := dag.Remove(tr, x.ID)
			require.NoError(t, err)
			assert.Equal(t, x.ID, removed.ID)

			_, err = dag.Find(tr, x.ID)
			assert.ErrorIs(t, err, dag.ErrNodeNotFound)
			assert.Equal(t, []int{w.ID, y.ID, z.ID, v.ID}, childIDs(t, tr, p.ID))
			assert.Equal(t, p.ID, y.ParentID)
			assert.Equal(t, p.ID, z.ParentID)
			assert.Equal(t, dag.EdgeSuccess, y.EdgeType)
			assert.Equal(t, dag.EdgeFailure, z.EdgeType)
			assert.Equal(t, total-1, tr.TotalNodes)
			assert.Equal(t, tr.TotalNodes, tr.NodeCount())
			assert.Equal(t, tc.wantDeleted, tr.DeletedNodes)
		})
	}
}

func TestRemove_ChildrenOfTopLevelNodeBecomeAlways(t *testing.T) {
	tr := dag.NewTree()
	a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	b := addNode(t, tr, a.ID, dag.EdgeSuccess)
	c := addNode(t, tr, a.ID, dag.EdgeFailure)

	_, err := dag.Remove(tr, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID, c.ID}, childIDs(t, tr, tr.RootID))
	assert.Equal(t, dag.EdgeAlways, b.EdgeType)
	assert.Equal(t, dag.EdgeAlways, c.EdgeType)
	assert.False(t, dag.DetectConflicts(tr))
}

func TestRemove_Leaf(t *testing.T) {
	tr := dag.NewTree()
	a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	b := addNode(t, tr, a.ID, dag.EdgeSuccess)

	_, err := dag.Remove(tr, b.ID)
	require.NoError(t, err)
	assert.Empty(t, childIDs(t, tr, a.ID))
	assert.Equal(t, 1, tr.TotalNodes)
}

func TestRemove_Errors(t *testing.T) {
	tr := dag.NewTree()
	_, err := dag.Remove(tr, tr.RootID)
	assert.ErrorIs(t, err, dag.ErrRootImmutable)

	_, err = dag.Remove(tr, 12)
	assert.ErrorIs(t, err, dag.ErrNodeNotFound)
}

func TestRemove_PlaceholderIsDiscarded(t *testing.T) {
	tr := dag.NewTree()
	a := persisted(addNode(t, tr, tr.RootID, dag.EdgeAlways), 5)
	p, err := dag.Insert(tr, a.ID, dag.InsertOptions{})
	require.NoError(t, err)

	_, err = dag.Remove(tr, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.TotalNodes)
	assert.Empty(t, tr.DeletedNodes)
	assert.Empty(t, childIDs(t, tr, a.ID))
}
