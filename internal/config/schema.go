package config

import "github.com/gyaneshwarpardhi/wfeditor/internal/template"

// Config is the top-level YAML structure.
type Config struct {
	Version   string     `yaml:"version" validate:"required"`
	Editor    EditorConf `yaml:"editor"`
	Upstream  Upstream   `yaml:"upstream"`
	Catalog   Catalog    `yaml:"catalog"`
	Workflows []Workflow `yaml:"workflows" validate:"dive"`
}

// EditorConf holds tunable settings for detail fetching.
type EditorConf struct {
	FetchWorkers    int `yaml:"fetch_workers" validate:"gte=1"`
	FetchQueueDepth int `yaml:"fetch_queue_depth" validate:"gte=1"`
	FetchTimeoutMs  int `yaml:"fetch_timeout_ms" validate:"gte=1"`
}

// Upstream points at the job API. An empty BaseURL selects the static catalog.
type Upstream struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Token   string `yaml:"token"`
}

// Catalog lists the records served when no upstream is configured.
type Catalog struct {
	Templates   []template.UnifiedJobTemplate `yaml:"templates" validate:"dive"`
	Credentials []template.Resource           `yaml:"credentials" validate:"dive"`
	Inventories []template.Resource           `yaml:"inventories" validate:"dive"`
}

// Workflow is a persisted workflow as supplied by the server: the seed of an editing session.
type Workflow struct {
	ID    int            `yaml:"id" json:"id" validate:"required,gt=0"`
	Name  string         `yaml:"name" json:"name"`
	Nodes []WorkflowNode `yaml:"nodes" json:"nodes" validate:"dive"`
}

// WorkflowNode is one persisted node. Children are referenced by persisted node ID.
type WorkflowNode struct {
	ID                 int              `yaml:"id" json:"id" validate:"required,gt=0"`
	UnifiedJobTemplate int              `yaml:"unified_job_template" json:"unified_job_template" validate:"required,gt=0"`
	Summary            *TemplateSummary `yaml:"summary,omitempty" json:"summary,omitempty"`
	SuccessNodes       []int            `yaml:"success_nodes" json:"success_nodes"`
	FailureNodes       []int            `yaml:"failure_nodes" json:"failure_nodes"`
	AlwaysNodes        []int            `yaml:"always_nodes" json:"always_nodes"`

	Credential *int    `yaml:"credential,omitempty" json:"credential,omitempty"`
	Inventory  *int    `yaml:"inventory,omitempty" json:"inventory,omitempty"`
	Limit      *string `yaml:"limit,omitempty" json:"limit,omitempty"`
	JobType    *string `yaml:"job_type,omitempty" json:"job_type,omitempty" validate:"omitempty,oneof=run check"`
	JobTags    *string `yaml:"job_tags,omitempty" json:"job_tags,omitempty"`
	SkipTags   *string `yaml:"skip_tags,omitempty" json:"skip_tags,omitempty"`
}

// TemplateSummary is the partial template record embedded in a seed node.
type TemplateSummary struct {
	Name string        `yaml:"name" json:"name"`
	Type template.Kind `yaml:"type" json:"type" validate:"omitempty,oneof=job_template project inventory_source"`
}

// Workflow returns the seed with the given ID, or nil.
func (c *Config) Workflow(id int) *Workflow {
	for i := range c.Workflows {
		if c.Workflows[i].ID == id {
			return &c.Workflows[i]
		}
	}
	return nil
}
