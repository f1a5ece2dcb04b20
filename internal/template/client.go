package template

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Client fetches templates, credentials and inventories from the job API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client rooted at baseURL (e.g. https://host/api/v2).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) UnifiedJobTemplate(ctx context.Context, id int) (*UnifiedJobTemplate, error) {
	var t UnifiedJobTemplate
	if err := c.get(ctx, fmt.Sprintf("/unified_job_templates/%d/", id), &t); err != nil {
		return nil, fmt.Errorf("unified job template %d: %w", id, err)
	}
	t.Detailed = true
	return &t, nil
}

func (c *Client) Credential(ctx context.Context, id int) (*Resource, error) {
	var r Resource
	if err := c.get(ctx, fmt.Sprintf("/credentials/%d/", id), &r); err != nil {
		return nil, fmt.Errorf("credential %d: %w", id, err)
	}
	return &r, nil
}

func (c *Client) Inventory(ctx context.Context, id int) (*Resource, error) {
	var r Resource
	if err := c.get(ctx, fmt.Sprintf("/inventories/%d/", id), &r); err != nil {
		return nil, fmt.Errorf("inventory %d: %w", id, err)
	}
	return &r, nil
}

// get fetches path and decodes the loosely typed document into out.
// Unknown keys (related, summary_fields, ...) are ignored.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
