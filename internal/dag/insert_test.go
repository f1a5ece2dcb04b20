package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

func TestInsert_FirstNodeUnderRoot(t *testing.T) {
	tr := dag.NewTree()

	a, err := dag.Insert(tr, tr.RootID, dag.InsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, dag.EdgeAlways, a.EdgeType)
	assert.True(t, a.Placeholder)
	assert.True(t, a.IsNew)
	assert.Equal(t, 0, tr.TotalNodes, "placeholders are not counted")

	_, err = dag.Confirm(tr, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.TotalNodes)
	assert.False(t, dag.DetectConflicts(tr))
}

func TestInsert_DefaultEdgeType(t *testing.T) {
	cases := []struct {
		name        string
		siblings    []dag.EdgeType
		wantTypes   []dag.EdgeType
		wantDefault dag.EdgeType
		wantRestr   dag.Restriction
	}{
		{"no siblings", nil, []dag.EdgeType{}, dag.EdgeSuccess, dag.RestrictNone},
		{"success sibling", []dag.EdgeType{dag.EdgeSuccess}, []dag.EdgeType{dag.EdgeSuccess}, dag.EdgeSuccess, dag.RestrictSuccessFailure},
		{"failure sibling", []dag.EdgeType{dag.EdgeFailure}, []dag.EdgeType{dag.EdgeFailure}, dag.EdgeSuccess, dag.RestrictSuccessFailure},
		{"always sibling", []dag.EdgeType{dag.EdgeAlways}, []dag.EdgeType{dag.EdgeAlways}, dag.EdgeAlways, dag.RestrictAlways},
		{"mixed siblings", []dag.EdgeType{dag.EdgeAlways, dag.EdgeFailure}, []dag.EdgeType{dag.EdgeAlways, dag.EdgeFailure}, dag.EdgeSuccess, dag.RestrictNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := dag.NewTree()
			p := addNode(t, tr, tr.RootID, dag.EdgeAlways)
			for _, et := range tc.siblings {
				addNode(t, tr, p.ID, et)
			}

			n, err := dag.Insert(tr, p.ID, dag.InsertOptions{})
			require.NoError(t, err)
			assert.Equal(t, tc.wantDefault, n.EdgeType)

			types, err := dag.SiblingTypes(tr, p.ID, n.ID)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.wantTypes, types.Sorted())
			assert.Equal(t, tc.wantRestr, dag.RestrictionOf(types))
		})
	}
}

func TestSiblingTypes_UnderRootIgnoresRootRule(t *testing.T) {
	tr := dag.NewTree()
	addNode(t, tr, tr.RootID, dag.EdgeSuccess)

	n, err := dag.Insert(tr, tr.RootID, dag.InsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, dag.EdgeAlways, n.EdgeType, "children of the start node always run")

	types, err := dag.SiblingTypes(tr, tr.RootID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []dag.EdgeType{dag.EdgeSuccess}, types.Sorted())
	assert.Equal(t, dag.RestrictSuccessFailure, dag.RestrictionOf(types))

	allowed, err := dag.AllowedEdgeTypes(tr, tr.RootID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []dag.EdgeType{dag.EdgeAlways}, allowed)
}

func TestAllowedEdgeTypes(t *testing.T) {
	tr := dag.NewTree()
	p := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	a := addNode(t, tr, p.ID, dag.EdgeSuccess)

	allowed, err := dag.AllowedEdgeTypes(tr, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []dag.EdgeType{dag.EdgeAlways, dag.EdgeSuccess, dag.EdgeFailure}, allowed, "a node does not restrict itself")

	b := addNode(t, tr, p.ID, dag.EdgeFailure)
	allowed, err = dag.AllowedEdgeTypes(tr, p.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []dag.EdgeType{dag.EdgeSuccess, dag.EdgeFailure}, allowed)

	_, err = dag.AllowedEdgeTypes(tr, 99, 0)
	assert.ErrorIs(t, err, dag.ErrNodeNotFound)
}

func TestInsert_Splice(t *testing.T) {
	tr := dag.NewTree()
	a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	x := addNode(t, tr, a.ID, dag.EdgeFailure)
	b := addNode(t, tr, a.ID, dag.EdgeSuccess)
	d := addNode(t, tr, b.ID, dag.EdgeSuccess)
	before := reachable(tr)
	total := tr.TotalNodes

	c, err := dag.Insert(tr, a.ID, dag.InsertOptions{Between: &dag.Edge{ParentID: a.ID, ChildID: b.ID}})
	require.NoError(t, err)
	assert.Equal(t, total, tr.TotalNodes)

	_, err = dag.Confirm(tr, c.ID)
	require.NoError(t, err)
	assert.Equal(t, total+1, tr.TotalNodes)

	assert.Equal(t, []int{x.ID, c.ID}, childIDs(t, tr, a.ID), "new node takes the displaced child's slot")
	assert.Equal(t, dag.EdgeSuccess, c.EdgeType)
	assert.Equal(t, []int{b.ID}, childIDs(t, tr, c.ID))
	assert.Equal(t, c.ID, b.ParentID)
	assert.Equal(t, dag.EdgeAlways, b.EdgeType)
	assert.Equal(t, []int{d.ID}, childIDs(t, tr, b.ID))
	assert.Nil(t, c.Splice)

	after := reachable(tr)
	for id := range before {
		assert.True(t, after[id], "node %d unreachable after splice", id)
	}
	assert.Equal(t, tr.TotalNodes, tr.NodeCount())
}

func TestInsert_SpliceUnderRoot(t *testing.T) {
	tr := dag.NewTree()
	a := addNode(t, tr, tr.RootID, dag.EdgeAlways)

	c, err := dag.Insert(tr, tr.RootID, dag.InsertOptions{Between: &dag.Edge{ParentID: tr.RootID, ChildID: a.ID}})
	require.NoError(t, err)
	assert.Equal(t, dag.EdgeAlways, c.EdgeType)
	assert.Equal(t, []int{c.ID}, childIDs(t, tr, tr.RootID))
	assert.Equal(t, []int{a.ID}, childIDs(t, tr, c.ID))
}

func TestInsert_SpliceInvalidEdge(t *testing.T) {
	tr := dag.NewTree()
	a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	b := addNode(t, tr, a.ID, dag.EdgeSuccess)
	c := addNode(t, tr, b.ID, dag.EdgeSuccess)
	next := tr.NextIndex

	_, err := dag.Insert(tr, a.ID, dag.InsertOptions{Between: &dag.Edge{ParentID: a.ID, ChildID: c.ID}})
	assert.ErrorIs(t, err, dag.ErrInvalidEdge)

	_, err = dag.Insert(tr, a.ID, dag.InsertOptions{Between: &dag.Edge{ParentID: b.ID, ChildID: c.ID}})
	assert.ErrorIs(t, err, dag.ErrInvalidEdge)

	_, err = dag.Insert(tr, a.ID, dag.InsertOptions{Between: &dag.Edge{ParentID: a.ID, ChildID: 99}})
	assert.ErrorIs(t, err, dag.ErrNodeNotFound)

	assert.Equal(t, []int{b.ID}, childIDs(t, tr, a.ID))
	assert.Equal(t, next, tr.NextIndex, "failed inserts allocate nothing")
}

func TestDiscard(t *testing.T) {
	t.Run("append", func(t *testing.T) {
		tr := dag.NewTree()
		a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
		total := tr.TotalNodes

		p, err := dag.Insert(tr, a.ID, dag.InsertOptions{})
		require.NoError(t, err)
		require.NoError(t, dag.Discard(tr, p.ID))

		assert.Equal(t, total, tr.TotalNodes)
		_, err = dag.Find(tr, p.ID)
		assert.ErrorIs(t, err, dag.ErrNodeNotFound)
		assert.Empty(t, childIDs(t, tr, a.ID))
		assert.Empty(t, tr.DeletedNodes)
	})

	t.Run("splice restores the edge", func(t *testing.T) {
		tr := dag.NewTree()
		a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
		b := addNode(t, tr, a.ID, dag.EdgeFailure)
		other := addNode(t, tr, a.ID, dag.EdgeSuccess)

		p, err := dag.Insert(tr, a.ID, dag.InsertOptions{Between: &dag.Edge{ParentID: a.ID, ChildID: b.ID}})
		require.NoError(t, err)
		require.NoError(t, dag.Discard(tr, p.ID))

		assert.Equal(t, []int{b.ID, other.ID}, childIDs(t, tr, a.ID))
		assert.Equal(t, a.ID, b.ParentID)
		assert.Equal(t, dag.EdgeFailure, b.EdgeType)
	})

	t.Run("confirmed node", func(t *testing.T) {
		tr := dag.NewTree()
		a := addNode(t, tr, tr.RootID, dag.EdgeAlways)
		assert.ErrorIs(t, dag.Discard(tr, a.ID), dag.ErrNotPlaceholder)
		_, err := dag.Confirm(tr, a.ID)
		assert.ErrorIs(t, err, dag.ErrNotPlaceholder)
	})
}

func TestApply(t *testing.T) {
	tr := dag.NewTree()
	a := persisted(addNode(t, tr, tr.RootID, dag.EdgeAlways), 50)
	b := addNode(t, tr, a.ID, dag.EdgeSuccess)
	limit := "db"
	tmpl := &template.UnifiedJobTemplate{ID: 9, Name: "migrate"}

	_, err := dag.Apply(tr, a.ID, dag.Update{EdgeType: dag.EdgeSuccess})
	assert.ErrorIs(t, err, dag.ErrEdgeTypeNotAllowed)

	_, err = dag.Apply(tr, b.ID, dag.Update{EdgeType: "sometimes"})
	assert.ErrorIs(t, err, dag.ErrEdgeTypeNotAllowed)

	_, err = dag.Apply(tr, tr.RootID, dag.Update{EdgeType: dag.EdgeAlways})
	assert.ErrorIs(t, err, dag.ErrRootImmutable)

	got, err := dag.Apply(tr, b.ID, dag.Update{Template: tmpl, Prompts: dag.PromptValues{Limit: &limit}, EdgeType: dag.EdgeFailure})
	require.NoError(t, err)
	assert.Equal(t, dag.EdgeFailure, got.EdgeType)
	assert.Equal(t, 9, got.Template.ID)
	assert.NotSame(t, tmpl, got.Template)
	assert.False(t, got.Edited, "new nodes are never marked edited")

	got, err = dag.Apply(tr, a.ID, dag.Update{EdgeType: dag.EdgeAlways})
	require.NoError(t, err)
	assert.True(t, got.Edited)
	assert.Equal(t, 100+a.ID, got.Template.ID, "nil template leaves it unchanged")
}
