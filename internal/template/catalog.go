package template

import (
	"context"
	"fmt"
)

// Catalog is a Fetcher backed by records loaded from the config file.
// It is used when no upstream API is configured, and in tests.
type Catalog struct {
	templates   map[int]UnifiedJobTemplate
	credentials map[int]Resource
	inventories map[int]Resource
}

// NewCatalog indexes the given records by ID. Catalog templates are full records.
func NewCatalog(templates []UnifiedJobTemplate, credentials, inventories []Resource) *Catalog {
	c := &Catalog{
		templates:   make(map[int]UnifiedJobTemplate, len(templates)),
		credentials: make(map[int]Resource, len(credentials)),
		inventories: make(map[int]Resource, len(inventories)),
	}
	for _, t := range templates {
		t.Detailed = true
		c.templates[t.ID] = t
	}
	for _, r := range credentials {
		c.credentials[r.ID] = r
	}
	for _, r := range inventories {
		c.inventories[r.ID] = r
	}
	return c
}

func (c *Catalog) UnifiedJobTemplate(ctx context.Context, id int) (*UnifiedJobTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("unified job template %d: %w", id, ErrNotFound)
	}
	return &t, nil
}

func (c *Catalog) Credential(ctx context.Context, id int) (*Resource, error) {
	return lookup(ctx, c.credentials, "credential", id)
}

func (c *Catalog) Inventory(ctx context.Context, id int) (*Resource, error) {
	return lookup(ctx, c.inventories, "inventory", id)
}

func lookup(ctx context.Context, m map[int]Resource, kind string, id int) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return &r, nil
}
