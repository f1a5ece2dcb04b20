package dag_test

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

func strPtr(s string) *string { return &s }

func TestSerialize_Golden(t *testing.T) {
	tr, err := dag.Build(&config.Workflow{ID: 1, Nodes: []config.WorkflowNode{
		{ID: 10, UnifiedJobTemplate: 7, Summary: &config.TemplateSummary{Name: "deploy", Type: template.KindJobTemplate},
			SuccessNodes: []int{11}, FailureNodes: []int{12}, Limit: strPtr("web")},
		{ID: 11, UnifiedJobTemplate: 8},
		{ID: 12, UnifiedJobTemplate: 8},
	}})
	require.NoError(t, err)

	// Session IDs: root 1, node 10 → 2, node 11 → 3, node 12 → 4.
	_, err = dag.Remove(tr, 4)
	require.NoError(t, err)

	p, err := dag.Insert(tr, 3, dag.InsertOptions{})
	require.NoError(t, err)
	require.Equal(t, 5, p.ID)
	_, err = dag.Apply(tr, p.ID, dag.Update{
		Template: &template.UnifiedJobTemplate{ID: 9, Type: template.KindJobTemplate, AskLimitOnLaunch: true, Detailed: true},
		Prompts: dag.PromptValues{
			Limit:     strPtr("db"),
			Inventory: &template.Resource{ID: 4, Name: "prod"}, // not asked for; dropped
		},
		EdgeType: dag.EdgeFailure,
	})
	require.NoError(t, err)
	_, err = dag.Confirm(tr, p.ID)
	require.NoError(t, err)

	payload, err := dag.Serialize(tr)
	require.NoError(t, err)

	data, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "payload", append(data, '\n'))
}

func TestSerialize_EdgeBuckets(t *testing.T) {
	tr := dag.NewTree()
	p := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	s := addNode(t, tr, p.ID, dag.EdgeSuccess)
	f := addNode(t, tr, p.ID, dag.EdgeFailure)
	s2 := addNode(t, tr, p.ID, dag.EdgeSuccess)

	payload, err := dag.Serialize(tr)
	require.NoError(t, err)
	require.Len(t, payload.Nodes, 4)
	top := payload.Nodes[0]
	assert.Equal(t, p.ID, top.LocalID)
	assert.Zero(t, top.ID)
	assert.Equal(t, []int{s.ID, s2.ID}, top.SuccessNodes)
	assert.Equal(t, []int{f.ID}, top.FailureNodes)
	assert.Empty(t, top.AlwaysNodes)
	assert.NotNil(t, payload.DeletedNodes)
}

func TestSerialize_PromptsFollowAskFlags(t *testing.T) {
	tr := dag.NewTree()
	n := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	n.Template = &template.UnifiedJobTemplate{
		ID: 7, Type: template.KindJobTemplate, Detailed: true,
		AskCredentialOnLaunch: true, AskJobTypeOnLaunch: true, AskSkipTagsOnLaunch: true,
	}
	n.Prompts = dag.PromptValues{
		Credential: &template.Resource{ID: 3},
		Inventory:  &template.Resource{ID: 4},
		Limit:      strPtr("web"),
		JobType:    strPtr("check"),
		JobTags:    strPtr("a"),
		SkipTags:   strPtr("b"),
	}

	payload, err := dag.Serialize(tr)
	require.NoError(t, err)
	sn := payload.Nodes[0]
	require.NotNil(t, sn.Credential)
	assert.Equal(t, 3, *sn.Credential)
	assert.Nil(t, sn.Inventory)
	assert.Nil(t, sn.Limit)
	assert.Equal(t, "check", *sn.JobType)
	assert.Nil(t, sn.JobTags)
	assert.Equal(t, "b", *sn.SkipTags)
}

func TestSerialize_Refuses(t *testing.T) {
	tr := dag.NewTree()
	_, err := dag.Insert(tr, tr.RootID, dag.InsertOptions{})
	require.NoError(t, err)
	_, err = dag.Serialize(tr)
	assert.ErrorIs(t, err, dag.ErrPendingPlaceholder)

	tr = dag.NewTree()
	n := addNode(t, tr, tr.RootID, dag.EdgeAlways)
	n.Template = nil
	_, err = dag.Serialize(tr)
	assert.ErrorIs(t, err, dag.ErrMissingTemplate)
}
