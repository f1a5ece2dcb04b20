package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// Type names a user action in the workflow builder.
type Type string

const (
	AddNode        Type = "add_node"
	ConfirmNode    Type = "confirm_node"
	CancelNode     Type = "cancel_node"
	EditNode       Type = "edit_node"
	SelectTemplate Type = "select_template"
	SaveEdit       Type = "save_edit"
	CancelEdit     Type = "cancel_edit"
	DeleteNode     Type = "delete_node"
	CancelSession  Type = "cancel_session"
	RetryFetch     Type = "retry_fetch"
)

// Event is one UI-initiated editor action. Each event maps to exactly one operation.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type" validate:"required,oneof=add_node confirm_node cancel_node edit_node select_template save_edit cancel_edit delete_node cancel_session retry_fetch"`
	OccurredAt time.Time `json:"occurred_at"`

	NodeID   int `json:"node_id,omitempty" validate:"gte=0"`
	ParentID int `json:"parent_id,omitempty" validate:"gte=0"`
	// ChildID, with add_node, splices the new node into ParentID→ChildID.
	ChildID int `json:"child_id,omitempty" validate:"gte=0"`

	EdgeType dag.EdgeType                 `json:"edge_type,omitempty" validate:"omitempty,oneof=always success failure"`
	Template *template.UnifiedJobTemplate `json:"template,omitempty"`
	Prompts  *dag.PromptValues            `json:"prompts,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid event")

// Validate checks field constraints and the fields each event type needs.
func (e *Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch e.Type {
	case AddNode:
		if e.ParentID == 0 {
			return fmt.Errorf("%w: %s requires parent_id", ErrInvalid, e.Type)
		}
	case ConfirmNode, SaveEdit:
		if e.NodeID == 0 {
			return fmt.Errorf("%w: %s requires node_id", ErrInvalid, e.Type)
		}
		if e.EdgeType == "" {
			return fmt.Errorf("%w: %s requires edge_type", ErrInvalid, e.Type)
		}
	case SelectTemplate:
		if e.NodeID == 0 || e.Template == nil {
			return fmt.Errorf("%w: %s requires node_id and template", ErrInvalid, e.Type)
		}
	case CancelNode, EditNode, CancelEdit, DeleteNode, RetryFetch:
		if e.NodeID == 0 {
			return fmt.Errorf("%w: %s requires node_id", ErrInvalid, e.Type)
		}
	}
	return nil
}
