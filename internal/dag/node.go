package dag

import (
	"sort"

	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// EdgeType is the condition under which a child runs relative to its parent's outcome.
type EdgeType string

const (
	EdgeAlways  EdgeType = "always"
	EdgeSuccess EdgeType = "success"
	EdgeFailure EdgeType = "failure"
)

// Valid reports whether e is one of the three edge types.
func (e EdgeType) Valid() bool {
	switch e {
	case EdgeAlways, EdgeSuccess, EdgeFailure:
		return true
	}
	return false
}

// EdgeSet is a set of edge types in use among siblings.
type EdgeSet map[EdgeType]struct{}

func (s EdgeSet) Has(e EdgeType) bool {
	_, ok := s[e]
	return ok
}

// Sorted returns the members in a stable order.
func (s EdgeSet) Sorted() []EdgeType {
	out := make([]EdgeType, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PromptValues are launch-time overrides for a node. They are stored as the
// user entered them; Effective filters them by what the template allows.
type PromptValues struct {
	Credential *template.Resource `json:"credential,omitempty"`
	Inventory  *template.Resource `json:"inventory,omitempty"`
	Limit      *string            `json:"limit,omitempty"`
	JobType    *string            `json:"job_type,omitempty" validate:"omitempty,oneof=run check"`
	JobTags    *string            `json:"job_tags,omitempty"`
	SkipTags   *string            `json:"skip_tags,omitempty"`
}

// Effective returns only the values t accepts at launch. A summary template
// carries no ask flags, so its values pass through as the server sent them.
func (p PromptValues) Effective(t *template.UnifiedJobTemplate) PromptValues {
	if t != nil && !t.Detailed {
		return p
	}
	var out PromptValues
	if t.AllowsPrompt(template.PromptCredential) {
		out.Credential = p.Credential
	}
	if t.AllowsPrompt(template.PromptInventory) {
		out.Inventory = p.Inventory
	}
	if t.AllowsPrompt(template.PromptLimit) {
		out.Limit = p.Limit
	}
	if t.AllowsPrompt(template.PromptJobType) {
		out.JobType = p.JobType
	}
	if t.AllowsPrompt(template.PromptJobTags) {
		out.JobTags = p.JobTags
	}
	if t.AllowsPrompt(template.PromptSkipTags) {
		out.SkipTags = p.SkipTags
	}
	return out
}

// Node is one step of the workflow. The root (start) node has ParentID NoParent,
// no edge type and no template.
type Node struct {
	ID       int      `json:"id"`
	ParentID int      `json:"parent_id"`
	Children []int    `json:"children"`
	EdgeType EdgeType `json:"edge_type,omitempty"`

	Template    *template.UnifiedJobTemplate `json:"unified_job_template,omitempty"`
	Prompts     PromptValues                 `json:"prompts"`
	PersistedID int                          `json:"persisted_id,omitempty"`

	IsNew        bool `json:"is_new"`
	Edited       bool `json:"edited"`
	Placeholder  bool `json:"placeholder"`
	IsActiveEdit bool `json:"is_active_edit"`
	EdgeConflict bool `json:"edge_conflict"`

	// Splice is set on a placeholder that was inserted into an existing edge.
	Splice *Splice `json:"splice,omitempty"`
}

// Splice remembers the edge a placeholder displaced.
type Splice struct {
	ChildID  int      `json:"child_id"`
	EdgeType EdgeType `json:"edge_type"`
}

// Edge identifies an existing parent→child link.
type Edge struct {
	ParentID int `json:"parent_id"`
	ChildID  int `json:"child_id"`
}
