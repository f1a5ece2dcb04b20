package dag

import (
	"fmt"

	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// Build constructs the editing tree from a persisted workflow seed.
// Seed nodes without a parent hang off the start node with "always" edges.
// Every node gets a fresh session ID and keeps its seed ID as PersistedID.
func Build(wf *config.Workflow) (*Tree, error) {
	if err := config.ValidateWorkflow(wf); err != nil {
		return nil, err
	}
	t := NewTree()

	byID := make(map[int]*config.WorkflowNode, len(wf.Nodes))
	hasParent := make(map[int]bool)
	for i := range wf.Nodes {
		sn := &wf.Nodes[i]
		byID[sn.ID] = sn
		for _, c := range sn.Children() {
			hasParent[c] = true
		}
	}

	for i := range wf.Nodes {
		sn := &wf.Nodes[i]
		if hasParent[sn.ID] {
			continue
		}
		if err := buildNode(t, byID, sn, t.RootID, EdgeAlways); err != nil {
			return nil, fmt.Errorf("workflow %d: %w", wf.ID, err)
		}
	}
	return t, nil
}

func buildNode(t *Tree, byID map[int]*config.WorkflowNode, sn *config.WorkflowNode, parentID int, et EdgeType) error {
	n := &Node{
		ID:          t.allocate(),
		ParentID:    parentID,
		EdgeType:    et,
		Template:    seedTemplate(sn),
		Prompts:     seedPrompts(sn),
		PersistedID: sn.ID,
	}
	t.Nodes[n.ID] = n
	parent := t.Nodes[parentID]
	parent.Children = append(parent.Children, n.ID)
	t.TotalNodes++

	edges := []struct {
		ids []int
		et  EdgeType
	}{
		{sn.SuccessNodes, EdgeSuccess},
		{sn.FailureNodes, EdgeFailure},
		{sn.AlwaysNodes, EdgeAlways},
	}
	for _, e := range edges {
		for _, cid := range e.ids {
			child, ok := byID[cid]
			if !ok {
				return fmt.Errorf("node %d: unknown child %d", sn.ID, cid)
			}
			if err := buildNode(t, byID, child, n.ID, e.et); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedTemplate(sn *config.WorkflowNode) *template.UnifiedJobTemplate {
	t := &template.UnifiedJobTemplate{ID: sn.UnifiedJobTemplate}
	if sn.Summary != nil {
		t.Name = sn.Summary.Name
		t.Type = sn.Summary.Type
	}
	return t
}

func seedPrompts(sn *config.WorkflowNode) PromptValues {
	pv := PromptValues{
		Limit:    cloneString(sn.Limit),
		JobType:  cloneString(sn.JobType),
		JobTags:  cloneString(sn.JobTags),
		SkipTags: cloneString(sn.SkipTags),
	}
	if sn.Credential != nil {
		pv.Credential = &template.Resource{ID: *sn.Credential}
	}
	if sn.Inventory != nil {
		pv.Inventory = &template.Resource{ID: *sn.Inventory}
	}
	return pv
}

// cloneString keeps trees from sharing memory with the seed, which every session reads.
func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
