package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/event"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

func TestValidate(t *testing.T) {
	check := "check"
	deploy := "deploy"
	cases := []struct {
		name    string
		ev      event.Event
		wantErr bool
	}{
		{"add", event.Event{Type: event.AddNode, ParentID: 1}, false},
		{"add splice", event.Event{Type: event.AddNode, ParentID: 1, ChildID: 2}, false},
		{"add without parent", event.Event{Type: event.AddNode}, true},
		{"unknown type", event.Event{Type: "explode", NodeID: 1}, true},
		{"missing type", event.Event{NodeID: 1}, true},
		{"confirm", event.Event{Type: event.ConfirmNode, NodeID: 2, EdgeType: dag.EdgeSuccess}, false},
		{"confirm without edge", event.Event{Type: event.ConfirmNode, NodeID: 2}, true},
		{"bad edge type", event.Event{Type: event.SaveEdit, NodeID: 2, EdgeType: "sometimes"}, true},
		{"select", event.Event{Type: event.SelectTemplate, NodeID: 2, Template: &template.UnifiedJobTemplate{ID: 7}}, false},
		{"select without template", event.Event{Type: event.SelectTemplate, NodeID: 2}, true},
		{"select bad template", event.Event{Type: event.SelectTemplate, NodeID: 2, Template: &template.UnifiedJobTemplate{}}, true},
		{"prompt job type", event.Event{Type: event.SaveEdit, NodeID: 2, EdgeType: dag.EdgeAlways, Prompts: &dag.PromptValues{JobType: &check}}, false},
		{"bad prompt job type", event.Event{Type: event.SaveEdit, NodeID: 2, EdgeType: dag.EdgeAlways, Prompts: &dag.PromptValues{JobType: &deploy}}, true},
		{"delete", event.Event{Type: event.DeleteNode, NodeID: 3}, false},
		{"delete without node", event.Event{Type: event.DeleteNode}, true},
		{"negative id", event.Event{Type: event.DeleteNode, NodeID: -1}, true},
		{"cancel session", event.Event{Type: event.CancelSession}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, event.ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
