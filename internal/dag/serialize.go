package dag

import "fmt"

// SerializedNode is the persistence form of one non-root node. Child lists
// and LocalID use session IDs; ID is the persisted ID when there is one.
type SerializedNode struct {
	LocalID            int     `json:"local_id"`
	ID                 int     `json:"id,omitempty"`
	UnifiedJobTemplate int     `json:"unified_job_template"`
	SuccessNodes       []int   `json:"success_nodes"`
	FailureNodes       []int   `json:"failure_nodes"`
	AlwaysNodes        []int   `json:"always_nodes"`
	Credential         *int    `json:"credential,omitempty"`
	Inventory          *int    `json:"inventory,omitempty"`
	JobType            *string `json:"job_type,omitempty"`
	Limit              *string `json:"limit,omitempty"`
	JobTags            *string `json:"job_tags,omitempty"`
	SkipTags           *string `json:"skip_tags,omitempty"`
	Edited             bool    `json:"edited"`
}

// Payload is everything the persistence layer needs to store the tree.
type Payload struct {
	Nodes        []SerializedNode `json:"nodes"`
	DeletedNodes []int            `json:"deleted_nodes"`
}

// Serialize flattens the tree in depth-first order. Prompt values the
// template does not ask for are left out. It fails while a placeholder is
// pending or a node has no template.
func Serialize(t *Tree) (*Payload, error) {
	p := &Payload{
		Nodes:        []SerializedNode{},
		DeletedNodes: append([]int{}, t.DeletedNodes...),
	}
	var err error
	t.Walk(func(n *Node) bool {
		if t.IsRoot(n.ID) {
			return true
		}
		if n.Placeholder {
			err = fmt.Errorf("node %d: %w", n.ID, ErrPendingPlaceholder)
			return false
		}
		if n.Template == nil {
			err = fmt.Errorf("node %d: %w", n.ID, ErrMissingTemplate)
			return false
		}
		p.Nodes = append(p.Nodes, serializeNode(t, n))
		return true
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func serializeNode(t *Tree, n *Node) SerializedNode {
	sn := SerializedNode{
		LocalID:            n.ID,
		ID:                 n.PersistedID,
		UnifiedJobTemplate: n.Template.ID,
		SuccessNodes:       []int{},
		FailureNodes:       []int{},
		AlwaysNodes:        []int{},
		Edited:             n.Edited,
	}
	for _, c := range t.Children(n.ID) {
		switch c.EdgeType {
		case EdgeSuccess:
			sn.SuccessNodes = append(sn.SuccessNodes, c.ID)
		case EdgeFailure:
			sn.FailureNodes = append(sn.FailureNodes, c.ID)
		default:
			sn.AlwaysNodes = append(sn.AlwaysNodes, c.ID)
		}
	}

	pv := n.Prompts.Effective(n.Template)
	if pv.Credential != nil {
		id := pv.Credential.ID
		sn.Credential = &id
	}
	if pv.Inventory != nil {
		id := pv.Inventory.ID
		sn.Inventory = &id
	}
	sn.JobType = pv.JobType
	sn.Limit = pv.Limit
	sn.JobTags = pv.JobTags
	sn.SkipTags = pv.SkipTags
	return sn
}
