package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/event"
	"github.com/gyaneshwarpardhi/wfeditor/internal/metrics"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

// Form is the node form currently open in a session. At most one form is
// open; its node carries IsActiveEdit.
type Form struct {
	NodeID           int                          `json:"node_id"`
	ParentID         int                          `json:"parent_id"`
	Adding           bool                         `json:"adding"`
	Template         *template.UnifiedJobTemplate `json:"template,omitempty"`
	Prompts          dag.PromptValues             `json:"prompts"`
	EdgeType         dag.EdgeType                 `json:"edge_type"`
	AllowedEdgeTypes []dag.EdgeType               `json:"allowed_edge_types"`
	// Loading counts detail fetches still in flight.
	Loading int `json:"loading"`
}

// View is a consistent read of a session.
type View struct {
	ID         string    `json:"id"`
	WorkflowID int       `json:"workflow_id"`
	Tree       *dag.Tree `json:"tree"`
	NodeCount  int       `json:"node_count"`
	Conflict   bool      `json:"conflict"`
	Conflicts  []int     `json:"conflicting_parents"`
	Form       *Form     `json:"form,omitempty"`
	Alert      string    `json:"alert,omitempty"`
}

// Session is one user's editing of one workflow. Events are applied one at a
// time under mu; fetch results are applied under the same lock.
type Session struct {
	ID         string
	WorkflowID int

	logger  *slog.Logger
	enqueue func(*fetchJob) bool

	mu        sync.Mutex
	tree      *dag.Tree
	master    *dag.Tree
	conflict  bool
	form      *Form
	alert     error
	closed    bool
	listeners []func(*dag.Tree)

	// rev counts applied events; edits holds the rev of each node's last
	// submitted edit. saved is the tree as of the last Save, at savedRev.
	rev      int
	edits    map[int]int
	saved    *dag.Tree
	savedRev int
}

func newSession(id string, workflowID int, tree *dag.Tree, enqueue func(*fetchJob) bool, logger *slog.Logger) *Session {
	s := &Session{
		ID:         id,
		WorkflowID: workflowID,
		logger:     logger.With("session", id, "workflow", workflowID),
		enqueue:    enqueue,
		tree:       tree,
		edits:      make(map[int]int),
	}
	s.conflict = dag.DetectConflicts(tree)
	s.master = tree.Clone()
	return s
}

// OnRefresh registers fn to receive a copy of the tree after every
// structural change.
func (s *Session) OnRefresh(fn func(*dag.Tree)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Apply validates ev and performs the one operation it names. Events that
// reference a node which no longer exists are dropped and return nil.
func (s *Session) Apply(ev *event.Event) error {
	if err := ev.Validate(); err != nil {
		metrics.Operations.WithLabelValues(string(ev.Type), "error").Inc()
		return err
	}

	s.mu.Lock()
	s.rev++
	structural, err := s.apply(ev)
	var (
		snapshot  *dag.Tree
		listeners []func(*dag.Tree)
	)
	if err == nil && structural {
		s.conflict = dag.DetectConflicts(s.tree)
		if s.conflict {
			metrics.ConflictsDetected.Inc()
		}
		s.syncForm()
		if len(s.listeners) > 0 {
			snapshot = s.tree.Clone()
			listeners = append(listeners, s.listeners...)
		}
	}
	s.mu.Unlock()

	switch {
	case err == nil:
		metrics.Operations.WithLabelValues(string(ev.Type), "ok").Inc()
	case errors.Is(err, dag.ErrNodeNotFound):
		metrics.Operations.WithLabelValues(string(ev.Type), "stale").Inc()
		s.logger.Debug("operation aborted on stale reference", "event", ev.Type, "node", ev.NodeID, "err", err)
		return nil
	default:
		metrics.Operations.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("%s: %w", ev.Type, err)
	}

	for _, fn := range listeners {
		fn(snapshot)
	}
	return nil
}

// apply dispatches ev with mu held. It reports whether the tree changed shape
// or edge types.
func (s *Session) apply(ev *event.Event) (bool, error) {
	switch ev.Type {
	case event.AddNode:
		return true, s.addNode(ev)
	case event.ConfirmNode:
		return true, s.confirmNode(ev)
	case event.CancelNode:
		return true, s.cancelNode(ev.NodeID)
	case event.EditNode:
		// opening a form discards an unconfirmed node elsewhere
		return true, s.editNode(ev.NodeID)
	case event.SelectTemplate:
		return false, s.selectTemplate(ev)
	case event.SaveEdit:
		return true, s.saveEdit(ev)
	case event.CancelEdit:
		return true, s.cancelEdit(ev.NodeID)
	case event.DeleteNode:
		return true, s.deleteNode(ev.NodeID)
	case event.CancelSession:
		s.revert()
		return true, nil
	case event.RetryFetch:
		return false, s.retryFetch(ev.NodeID)
	}
	return false, fmt.Errorf("%w: unknown type %q", event.ErrInvalid, ev.Type)
}

func (s *Session) addNode(ev *event.Event) error {
	if ids := s.tree.Placeholders(); len(ids) > 0 {
		return fmt.Errorf("node %d: %w", ids[0], ErrPlaceholderPending)
	}
	var opts dag.InsertOptions
	if ev.ChildID != 0 {
		opts.Between = &dag.Edge{ParentID: ev.ParentID, ChildID: ev.ChildID}
	}
	n, err := dag.Insert(s.tree, ev.ParentID, opts)
	if err != nil {
		return err
	}
	s.closeForm()
	n.IsActiveEdit = true
	s.form = &Form{
		NodeID:   n.ID,
		ParentID: n.ParentID,
		Adding:   true,
		EdgeType: n.EdgeType,
	}
	return nil
}

func (s *Session) confirmNode(ev *event.Event) error {
	n, err := dag.Find(s.tree, ev.NodeID)
	if err != nil {
		return err
	}
	if !n.Placeholder {
		return fmt.Errorf("confirm node %d: %w", n.ID, dag.ErrNotPlaceholder)
	}
	u := s.update(n.ID, ev)
	if u.Template == nil {
		return fmt.Errorf("node %d: %w", n.ID, ErrTemplateRequired)
	}
	if _, err := dag.Apply(s.tree, n.ID, u); err != nil {
		return err
	}
	if _, err := dag.Confirm(s.tree, n.ID); err != nil {
		return err
	}
	s.edits[n.ID] = s.rev
	n.IsActiveEdit = false
	s.form = nil
	s.alert = nil
	s.logger.Info("node added", "node", n.ID, "parent", n.ParentID, "edge", n.EdgeType, "template", n.Template.ID)
	return nil
}

func (s *Session) cancelNode(id int) error {
	if err := dag.Discard(s.tree, id); err != nil {
		return err
	}
	if s.form != nil && s.form.NodeID == id {
		s.form = nil
		s.alert = nil
	}
	return nil
}

func (s *Session) editNode(id int) error {
	if s.tree.IsRoot(id) {
		return dag.ErrRootImmutable
	}
	n, err := dag.Find(s.tree, id)
	if err != nil {
		return err
	}
	if n.IsActiveEdit {
		return nil
	}
	s.closeForm()
	n.IsActiveEdit = true
	s.form = &Form{
		NodeID:   n.ID,
		ParentID: n.ParentID,
		Template: copyTemplate(n.Template),
		Prompts:  deepcopy.Copy(n.Prompts).(dag.PromptValues),
		EdgeType: n.EdgeType,
	}
	s.alert = nil
	s.startFetches()
	return nil
}

func (s *Session) selectTemplate(ev *event.Event) error {
	if _, err := dag.Find(s.tree, ev.NodeID); err != nil {
		return err
	}
	if s.form == nil || s.form.NodeID != ev.NodeID {
		return fmt.Errorf("node %d: %w", ev.NodeID, ErrNoActiveEdit)
	}
	s.form.Template = copyTemplate(ev.Template)
	s.alert = nil
	if !s.form.Template.Detailed {
		s.submit(FetchTemplate, s.form.Template.ID)
	}
	return nil
}

func (s *Session) saveEdit(ev *event.Event) error {
	n, err := dag.Find(s.tree, ev.NodeID)
	if err != nil {
		return err
	}
	if n.Placeholder {
		return s.confirmNode(ev)
	}
	if s.form == nil || s.form.NodeID != n.ID {
		return fmt.Errorf("node %d: %w", n.ID, ErrNoActiveEdit)
	}
	if _, err := dag.Apply(s.tree, n.ID, s.update(n.ID, ev)); err != nil {
		return err
	}
	s.edits[n.ID] = s.rev
	n.IsActiveEdit = false
	s.form = nil
	s.alert = nil
	s.logger.Info("node edited", "node", n.ID, "edge", n.EdgeType)
	return nil
}

func (s *Session) cancelEdit(id int) error {
	n, err := dag.Find(s.tree, id)
	if err != nil {
		return err
	}
	if n.Placeholder {
		return s.cancelNode(id)
	}
	n.IsActiveEdit = false
	if s.form != nil && s.form.NodeID == id {
		s.form = nil
		s.alert = nil
	}
	return nil
}

func (s *Session) deleteNode(id int) error {
	removed, err := dag.Remove(s.tree, id)
	if err != nil {
		return err
	}
	if s.form != nil && s.form.NodeID == id {
		s.form = nil
		s.alert = nil
	}
	s.logger.Info("node removed", "node", removed.ID, "persisted_id", removed.PersistedID)
	return nil
}

func (s *Session) retryFetch(id int) error {
	if _, err := dag.Find(s.tree, id); err != nil {
		return err
	}
	if s.form == nil || s.form.NodeID != id {
		return fmt.Errorf("node %d: %w", id, ErrNoActiveEdit)
	}
	s.alert = nil
	s.startFetches()
	return nil
}

// update builds the node update from ev, falling back to what the open form
// holds for nodeID.
func (s *Session) update(nodeID int, ev *event.Event) dag.Update {
	var u dag.Update
	if s.form != nil && s.form.NodeID == nodeID {
		u.Template = s.form.Template
		u.Prompts = s.form.Prompts
	}
	if ev.Template != nil {
		u.Template = ev.Template
	}
	if ev.Prompts != nil {
		u.Prompts = *ev.Prompts
	}
	u.EdgeType = ev.EdgeType
	return u
}

// closeForm leaves edit mode on the current form's node, discarding it if it
// was never confirmed.
func (s *Session) closeForm() {
	if s.form == nil {
		return
	}
	if n, err := dag.Find(s.tree, s.form.NodeID); err == nil {
		n.IsActiveEdit = false
		if n.Placeholder {
			_ = dag.Discard(s.tree, n.ID)
		}
	}
	s.form = nil
	s.alert = nil
}

// syncForm re-reads the open form's parent and allowed edge types after the
// tree changed, closing it if its node is gone.
func (s *Session) syncForm() {
	if s.form == nil {
		return
	}
	n, err := dag.Find(s.tree, s.form.NodeID)
	if err != nil {
		s.form = nil
		s.alert = nil
		return
	}
	allowed, err := dag.AllowedEdgeTypes(s.tree, n.ParentID, n.ID)
	if err != nil {
		return
	}
	s.form.ParentID = n.ParentID
	s.form.AllowedEdgeTypes = allowed
}

// startFetches requests whatever detail the open form is still missing.
func (s *Session) startFetches() {
	f := s.form
	if f.Template != nil && !f.Template.Detailed {
		s.submit(FetchTemplate, f.Template.ID)
	}
	if f.Prompts.Credential != nil && !f.Prompts.Credential.Resolved() {
		s.submit(FetchCredential, f.Prompts.Credential.ID)
	}
	if f.Prompts.Inventory != nil && !f.Prompts.Inventory.Resolved() {
		s.submit(FetchInventory, f.Prompts.Inventory.ID)
	}
}

func (s *Session) submit(kind FetchKind, id int) {
	j := &fetchJob{session: s, kind: kind, nodeID: s.form.NodeID, id: id}
	if !s.enqueue(j) {
		metrics.Fetches.WithLabelValues(string(kind), "rejected").Inc()
		s.alert = &FetchError{Kind: kind, ID: id, NodeID: j.nodeID, Err: ErrQueueFull}
		return
	}
	s.form.Loading++
}

// resolve applies a finished fetch to the open form. Results for a node that
// is gone, no longer being edited, or now pointing at another record are stale.
func (s *Session) resolve(j *fetchJob, res fetchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStaleResult
	}
	n, err := dag.Find(s.tree, j.nodeID)
	if err != nil || !n.IsActiveEdit || s.form == nil || s.form.NodeID != j.nodeID {
		return ErrStaleResult
	}
	if s.form.Loading > 0 {
		s.form.Loading--
	}

	switch j.kind {
	case FetchTemplate:
		if s.form.Template == nil || s.form.Template.ID != j.id {
			return ErrStaleResult
		}
	case FetchCredential:
		if s.form.Prompts.Credential == nil || s.form.Prompts.Credential.ID != j.id {
			return ErrStaleResult
		}
	case FetchInventory:
		if s.form.Prompts.Inventory == nil || s.form.Prompts.Inventory.ID != j.id {
			return ErrStaleResult
		}
	}

	if res.err != nil {
		fe := &FetchError{Kind: j.kind, ID: j.id, NodeID: j.nodeID, Err: res.err}
		s.alert = fe
		return fe
	}

	switch j.kind {
	case FetchTemplate:
		s.form.Template = res.template
	case FetchCredential:
		s.form.Prompts.Credential = res.resource
	case FetchInventory:
		s.form.Prompts.Inventory = res.resource
	}
	return nil
}

// View returns a copy of the session state.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &View{
		ID:         s.ID,
		WorkflowID: s.WorkflowID,
		Tree:       s.tree.Clone(),
		NodeCount:  s.tree.TotalNodes,
		Conflict:   s.conflict,
		Conflicts:  dag.Conflicts(s.tree),
	}
	if s.form != nil {
		v.Form = deepcopy.Copy(s.form).(*Form)
	}
	if s.alert != nil {
		v.Alert = s.alert.Error()
	}
	return v
}

// Alert returns the fetch failure currently shown to the user, if any.
func (s *Session) Alert() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// Save serializes the tree. It refuses while edge types conflict or a node is
// still being added. The serialized state is kept until Commit.
func (s *Session) Save() (*dag.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict {
		return nil, fmt.Errorf("conflicting parents %v: %w", dag.Conflicts(s.tree), ErrConflict)
	}
	p, err := dag.Serialize(s.tree)
	if err != nil {
		return nil, err
	}
	s.saved = s.tree.Clone()
	s.savedRev = s.rev
	return p, nil
}

// Commit records that the payload of the last Save was stored. persisted maps
// session IDs of newly stored nodes to the IDs the server assigned.
//
// Only what that payload carried is settled: deletions and edits made after
// Save stay pending, and a node stored by the save but removed since is queued
// for deletion. The saved state becomes what CancelSession reverts to.
func (s *Session) Commit(persisted map[int]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return ErrNotSaved
	}
	saved, savedRev := s.saved, s.savedRev
	s.saved = nil

	for local, id := range persisted {
		if n := saved.Nodes[local]; n != nil {
			n.PersistedID = id
			n.IsNew = false
		} else {
			s.logger.Warn("commit names a node the save did not carry", "node", local)
			continue
		}
		if n := s.tree.Nodes[local]; n != nil {
			n.PersistedID = id
			n.IsNew = false
		} else {
			s.tree.DeletedNodes = append(s.tree.DeletedNodes, id)
		}
	}

	for _, n := range s.tree.Nodes {
		n.Edited = !n.IsNew && s.edits[n.ID] > savedRev
	}

	stored := make(map[int]bool, len(saved.DeletedNodes))
	for _, id := range saved.DeletedNodes {
		stored[id] = true
	}
	pending := s.tree.DeletedNodes[:0:0]
	for _, id := range s.tree.DeletedNodes {
		if !stored[id] {
			pending = append(pending, id)
		}
	}
	s.tree.DeletedNodes = pending

	for _, n := range saved.Nodes {
		n.Edited = false
		n.IsActiveEdit = false
	}
	saved.DeletedNodes = nil
	s.master = saved
	s.logger.Info("workflow saved", "nodes", saved.TotalNodes, "pending_deletes", len(pending))
	return nil
}

// revert restores the last saved state. IDs allocated since then are not reused.
func (s *Session) revert() {
	next := s.tree.NextIndex
	s.tree = s.master.Clone()
	if next > s.tree.NextIndex {
		s.tree.NextIndex = next
	}
	for _, n := range s.tree.Nodes {
		n.IsActiveEdit = false
	}
	s.edits = make(map[int]int)
	s.form = nil
	s.alert = nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.form = nil
}

func copyTemplate(t *template.UnifiedJobTemplate) *template.UnifiedJobTemplate {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
