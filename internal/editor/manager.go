package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/metrics"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

type fetcherHolder struct {
	template.Fetcher
}

// Manager owns the open editing sessions and the fetch pool they share.
type Manager struct {
	logger  *slog.Logger
	timeout time.Duration
	fetcher atomic.Pointer[fetcherHolder]
	pool    *workerPool[*fetchJob]

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager starts the fetch pool. Workers stop when ctx is cancelled or
// Shutdown is called.
func NewManager(ctx context.Context, f template.Fetcher, conf config.EditorConf, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger:   logger,
		timeout:  time.Duration(conf.FetchTimeoutMs) * time.Millisecond,
		sessions: make(map[string]*Session),
	}
	m.fetcher.Store(&fetcherHolder{f})
	m.pool = newWorkerPool(ctx, conf.FetchWorkers, conf.FetchQueueDepth, m.process)
	return m
}

// Open builds a tree from wf and starts a session on it.
func (m *Manager) Open(wf *config.Workflow) (*Session, error) {
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}
	tree, err := dag.Build(wf)
	if err != nil {
		return nil, fmt.Errorf("open workflow %d: %w", wf.ID, err)
	}
	s := newSession(uuid.New().String(), wf.ID, tree, m.enqueue, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	s.logger.Info("session opened", "nodes", tree.TotalNodes, "conflict", s.conflict)
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close ends a session. Fetches still in flight for it are dropped on arrival.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.close()
	metrics.SessionsActive.Set(float64(n))
	s.logger.Info("session closed")
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SwapFetcher replaces the record source used by subsequent fetches.
func (m *Manager) SwapFetcher(f template.Fetcher) {
	m.fetcher.Store(&fetcherHolder{f})
}

func (m *Manager) currentFetcher() template.Fetcher {
	return m.fetcher.Load().Fetcher
}

func (m *Manager) enqueue(j *fetchJob) bool {
	ok := m.pool.Submit(j)
	metrics.FetchQueueUtilization.Set(m.QueueUtilization())
	return ok
}

// QueueUtilization returns the fetch queue fill ratio (0–1).
func (m *Manager) QueueUtilization() float64 {
	c := m.pool.QueueCap()
	if c == 0 {
		return 0
	}
	return float64(m.pool.QueueLen()) / float64(c)
}

// Shutdown drains the fetch pool.
func (m *Manager) Shutdown() {
	m.pool.Drain()
}
