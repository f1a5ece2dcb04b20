package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config for:
//   - Field constraints declared in struct tags
//   - Duplicate workflow IDs
//   - Structural problems in every workflow seed (see ValidateWorkflow)
func Validate(cfg *Config) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Sprintf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
		}
	}

	seen := make(map[int]bool, len(cfg.Workflows))
	for i := range cfg.Workflows {
		wf := &cfg.Workflows[i]
		if seen[wf.ID] {
			errs = append(errs, fmt.Sprintf("duplicate workflow id %d", wf.ID))
		}
		seen[wf.ID] = true
		errs = append(errs, workflowProblems(wf)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateWorkflow checks a single seed for structure the editor cannot represent:
// duplicate node IDs, references to unknown nodes, nodes with more than one
// parent, and cycles.
func ValidateWorkflow(wf *Workflow) error {
	if errs := workflowProblems(wf); len(errs) > 0 {
		return fmt.Errorf("workflow %d:\n  - %s", wf.ID, strings.Join(errs, "\n  - "))
	}
	return nil
}

func workflowProblems(wf *Workflow) []string {
	var errs []string
	loc := fmt.Sprintf("workflow %d", wf.ID)

	known := make(map[int]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if known[n.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate node id %d", loc, n.ID))
		}
		known[n.ID] = true
	}

	parent := make(map[int]int)
	for _, n := range wf.Nodes {
		for _, child := range n.Children() {
			switch {
			case child == n.ID:
				errs = append(errs, fmt.Sprintf("%s: node %d lists itself as a child", loc, n.ID))
			case !known[child]:
				errs = append(errs, fmt.Sprintf("%s: node %d references unknown node %d", loc, n.ID, child))
			default:
				if prev, ok := parent[child]; ok {
					errs = append(errs, fmt.Sprintf("%s: node %d has more than one parent (%d and %d)", loc, child, prev, n.ID))
					continue
				}
				parent[child] = n.ID
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// With at most one parent each, any node not reachable from a parentless
	// node sits on a cycle.
	children := make(map[int][]int, len(wf.Nodes))
	for _, n := range wf.Nodes {
		children[n.ID] = n.Children()
	}
	reached := make(map[int]bool, len(wf.Nodes))
	var visit func(id int)
	visit = func(id int) {
		if reached[id] {
			return
		}
		reached[id] = true
		for _, c := range children[id] {
			visit(c)
		}
	}
	for _, n := range wf.Nodes {
		if _, hasParent := parent[n.ID]; !hasParent {
			visit(n.ID)
		}
	}
	var cyclic []int
	for _, n := range wf.Nodes {
		if !reached[n.ID] {
			cyclic = append(cyclic, n.ID)
		}
	}
	if len(cyclic) > 0 {
		sort.Ints(cyclic)
		errs = append(errs, fmt.Sprintf("%s: nodes %v form a cycle", loc, cyclic))
	}
	return errs
}

// Children returns the node's child IDs in success, failure, always order.
func (n *WorkflowNode) Children() []int {
	out := make([]int, 0, len(n.SuccessNodes)+len(n.FailureNodes)+len(n.AlwaysNodes))
	out = append(out, n.SuccessNodes...)
	out = append(out, n.FailureNodes...)
	out = append(out, n.AlwaysNodes...)
	return out
}
