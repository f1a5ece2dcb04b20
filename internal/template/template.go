package template

import (
	"context"
	"errors"
)

// Kind discriminates the three kinds of unified job templates a workflow node may run.
type Kind string

const (
	KindJobTemplate     Kind = "job_template"
	KindProject         Kind = "project"
	KindInventorySource Kind = "inventory_source"
)

// PromptField names a launch-time override a job template may ask for.
type PromptField string

const (
	PromptCredential PromptField = "credential"
	PromptInventory  PromptField = "inventory"
	PromptLimit      PromptField = "limit"
	PromptJobType    PromptField = "job_type"
	PromptJobTags    PromptField = "job_tags"
	PromptSkipTags   PromptField = "skip_tags"
)

// ErrNotFound is returned by a Fetcher when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// UnifiedJobTemplate is the external template a workflow node points at.
// Summaries carried by a workflow seed only hold ID, Name and Type; the
// ask_*_on_launch flags are known once Detailed is set.
type UnifiedJobTemplate struct {
	ID   int    `json:"id" yaml:"id" mapstructure:"id" validate:"required,gt=0"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Type Kind   `json:"type" yaml:"type" mapstructure:"type" validate:"omitempty,oneof=job_template project inventory_source"`

	AskCredentialOnLaunch bool `json:"ask_credential_on_launch" yaml:"ask_credential_on_launch" mapstructure:"ask_credential_on_launch"`
	AskInventoryOnLaunch  bool `json:"ask_inventory_on_launch" yaml:"ask_inventory_on_launch" mapstructure:"ask_inventory_on_launch"`
	AskLimitOnLaunch      bool `json:"ask_limit_on_launch" yaml:"ask_limit_on_launch" mapstructure:"ask_limit_on_launch"`
	AskJobTypeOnLaunch    bool `json:"ask_job_type_on_launch" yaml:"ask_job_type_on_launch" mapstructure:"ask_job_type_on_launch"`
	AskTagsOnLaunch       bool `json:"ask_tags_on_launch" yaml:"ask_tags_on_launch" mapstructure:"ask_tags_on_launch"`
	AskSkipTagsOnLaunch   bool `json:"ask_skip_tags_on_launch" yaml:"ask_skip_tags_on_launch" mapstructure:"ask_skip_tags_on_launch"`

	Detailed bool `json:"detailed" yaml:"detailed"`
}

// AllowsPrompt reports whether the template accepts an override for f at launch.
// Projects and inventory sources never prompt.
func (t *UnifiedJobTemplate) AllowsPrompt(f PromptField) bool {
	if t == nil || t.Type != KindJobTemplate {
		return false
	}
	switch f {
	case PromptCredential:
		return t.AskCredentialOnLaunch
	case PromptInventory:
		return t.AskInventoryOnLaunch
	case PromptLimit:
		return t.AskLimitOnLaunch
	case PromptJobType:
		return t.AskJobTypeOnLaunch
	case PromptJobTags:
		return t.AskTagsOnLaunch
	case PromptSkipTags:
		return t.AskSkipTagsOnLaunch
	}
	return false
}

// Resource is a credential or inventory as shown next to a prompt value.
type Resource struct {
	ID   int    `json:"id" yaml:"id" mapstructure:"id" validate:"required,gt=0"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
}

// Resolved reports whether the display name has been fetched.
func (r *Resource) Resolved() bool {
	return r != nil && r.Name != ""
}

// Fetcher resolves full records for templates and prompt resources.
type Fetcher interface {
	UnifiedJobTemplate(ctx context.Context, id int) (*UnifiedJobTemplate, error)
	Credential(ctx context.Context, id int) (*Resource, error)
	Inventory(ctx context.Context, id int) (*Resource, error)
}
