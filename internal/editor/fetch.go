package editor

import (
	"context"
	"errors"
	"time"

	"github.com/gyaneshwarpardhi/wfeditor/internal/metrics"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// FetchKind names the record a detail fetch resolves.
type FetchKind string

const (
	FetchTemplate   FetchKind = "template"
	FetchCredential FetchKind = "credential"
	FetchInventory  FetchKind = "inventory"
)

// fetchJob asks for one record on behalf of the form open on nodeID.
type fetchJob struct {
	session *Session
	kind    FetchKind
	nodeID  int
	id      int
}

type fetchResult struct {
	template *template.UnifiedJobTemplate
	resource *template.Resource
	err      error
}

// fetch performs the upstream call for j with the current fetcher.
func fetch(ctx context.Context, f template.Fetcher, timeout time.Duration, j *fetchJob) fetchResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res fetchResult
	switch j.kind {
	case FetchTemplate:
		res.template, res.err = f.UnifiedJobTemplate(ctx, j.id)
	case FetchCredential:
		res.resource, res.err = f.Credential(ctx, j.id)
	case FetchInventory:
		res.resource, res.err = f.Inventory(ctx, j.id)
	}

	status := "ok"
	if res.err != nil {
		status = "error"
	}
	metrics.Fetches.WithLabelValues(string(j.kind), status).Inc()
	return res
}

// process is the fetch pool's worker function.
func (m *Manager) process(ctx context.Context, j *fetchJob) {
	res := fetch(ctx, m.currentFetcher(), m.timeout, j)
	err := j.session.resolve(j, res)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResult):
		metrics.StaleResultsDropped.Inc()
		j.session.logger.Debug("fetch result dropped", "kind", j.kind, "id", j.id, "node", j.nodeID)
	default:
		j.session.logger.Warn("fetch failed", "kind", j.kind, "id", j.id, "node", j.nodeID, "err", err)
	}
}
