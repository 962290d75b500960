package scrollsync

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/pstuifzand/chunkview/internal/folding"
)

var (
	ErrDestroyed     = errors.New("scroll sync manager destroyed")
	ErrDuplicateView = errors.New("view already registered")
	ErrInvalidView   = errors.New("invalid view")
)

type viewState struct {
	adapter ViewAdapter
	cache   *LayoutCache
	// programmatic suppresses the next scroll event, which is the echo of
	// the manager's own write
	programmatic bool
}

// Manager mirrors the scroll position of one view onto all others. All
// methods must be called from the host's event loop goroutine.
type Manager struct {
	ctrl  *folding.Controller
	sched Scheduler
	opts  Options

	views []*viewState
	byID  map[string]*viewState

	pending       Reason
	cancelRebuild CancelFunc
	lastReasons   Reason
	rebuilds      int

	activeSource  string
	cancelRelease CancelFunc

	last        *LogicalAnchor
	unsubscribe func()
	destroyed   bool
}

// New creates a manager over the visible sequence of ctrl. The manager
// subscribes to folding events and rebuilds its caches after every change.
func New(ctrl *folding.Controller, sched Scheduler, opts Options) (*Manager, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("failed to create scroll sync manager: %w", errors.New("nil folding controller"))
	}
	if sched == nil {
		return nil, fmt.Errorf("failed to create scroll sync manager: %w", errors.New("nil scheduler"))
	}
	m := &Manager{
		ctrl:  ctrl,
		sched: sched,
		opts:  opts.withDefaults(),
		byID:  make(map[string]*viewState),
	}
	m.unsubscribe = ctrl.AddClient(folding.ClientFunc(func(ev folding.Event, _ folding.State) {
		m.MarkDirty("", ReasonFolding)
	}))
	return m, nil
}

// AddView registers a view and schedules a rebuild
func (m *Manager) AddView(view ViewAdapter) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if view == nil || view.ID() == "" || view.Container() == nil {
		return ErrInvalidView
	}
	if _, exists := m.byID[view.ID()]; exists {
		return fmt.Errorf("failed to add view %s: %w", view.ID(), ErrDuplicateView)
	}
	v := &viewState{adapter: view, cache: &LayoutCache{}}
	m.views = append(m.views, v)
	m.byID[view.ID()] = v
	m.MarkDirty(view.ID(), ReasonMutation)
	return nil
}

// RemoveView unregisters a view. Unknown IDs are ignored.
func (m *Manager) RemoveView(viewID string) {
	v, ok := m.byID[viewID]
	if !ok {
		return
	}
	delete(m.byID, viewID)
	for i, existing := range m.views {
		if existing == v {
			m.views = append(m.views[:i:i], m.views[i+1:]...)
			break
		}
	}
	if m.activeSource == viewID {
		m.releaseSource()
	}
}

// HandleScroll is called by the host for every scroll event of a view
func (m *Manager) HandleScroll(viewID string) {
	if m.destroyed {
		return
	}
	v, ok := m.byID[viewID]
	if !ok {
		return
	}
	if v.programmatic {
		v.programmatic = false
		return
	}
	if m.activeSource != "" && m.activeSource != viewID {
		return
	}
	if !v.adapter.Visible() || v.cache.Len() == 0 {
		return
	}

	m.activeSource = viewID
	if m.cancelRelease != nil {
		m.cancelRelease()
	}
	m.cancelRelease = m.sched.AfterFunc(m.opts.QuietWindow, m.releaseSource)

	m.syncFrom(v)
}

// ActiveSource returns the view currently holding the source lock, or ""
func (m *Manager) ActiveSource() string {
	return m.activeSource
}

// MarkDirty schedules one cache rebuild on the next frame. Calls before the
// frame runs are coalesced and their reasons merged. An empty viewID marks
// every view.
func (m *Manager) MarkDirty(viewID string, reason Reason) {
	if m.destroyed {
		return
	}
	if viewID != "" {
		if _, ok := m.byID[viewID]; !ok {
			log.Printf("scrollsync: dirty mark for unknown view %s ignored", viewID)
			return
		}
	}
	m.pending |= reason
	if m.cancelRebuild != nil {
		return
	}
	m.cancelRebuild = m.sched.RequestFrame(func() {
		m.cancelRebuild = nil
		if m.destroyed {
			return
		}
		m.Rebuild()
	})
}

// Rebuild re-measures every visible view and replays the last logical
// anchor to all views except the active source
func (m *Manager) Rebuild() {
	if m.destroyed {
		return
	}
	if m.cancelRebuild != nil {
		m.cancelRebuild()
		m.cancelRebuild = nil
	}
	m.lastReasons = m.pending
	m.pending = 0
	m.rebuilds++

	visible := m.ctrl.VisibleSequence()
	for _, v := range m.views {
		if !v.adapter.Visible() {
			v.cache = &LayoutCache{}
			continue
		}
		v.cache = measure(v.adapter, visible, m.ctrl)
	}

	if m.last != nil {
		m.apply(*m.last, m.activeSource)
	}
}

// Rebuilds returns how many rebuilds ran and the reasons of the latest one
func (m *Manager) Rebuilds() (int, Reason) {
	return m.rebuilds, m.lastReasons
}

// Sync runs one measurement and apply step without a new scroll event:
// from the active source if there is one, otherwise by replaying the last
// logical anchor to every view. Running it twice without layout changes
// leaves every offset unchanged.
func (m *Manager) Sync() {
	if m.destroyed {
		return
	}
	if v, ok := m.byID[m.activeSource]; ok {
		m.syncFrom(v)
		return
	}
	if m.last != nil {
		m.apply(*m.last, "")
	}
}

// LastAnchor returns the last recorded logical anchor
func (m *Manager) LastAnchor() (LogicalAnchor, bool) {
	if m.last == nil {
		return LogicalAnchor{}, false
	}
	return *m.last, true
}

// Cache returns the current layout cache of a view
func (m *Manager) Cache(viewID string) *LayoutCache {
	v, ok := m.byID[viewID]
	if !ok {
		return nil
	}
	return v.cache
}

// Destroy cancels all scheduled callbacks and detaches from the folding
// controller. The manager cannot be used afterwards.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	if m.cancelRebuild != nil {
		m.cancelRebuild()
		m.cancelRebuild = nil
	}
	if m.cancelRelease != nil {
		m.cancelRelease()
		m.cancelRelease = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.activeSource = ""
	m.views = nil
	m.byID = make(map[string]*viewState)
}

func (m *Manager) releaseSource() {
	if m.cancelRelease != nil {
		m.cancelRelease()
		m.cancelRelease = nil
	}
	m.activeSource = ""
}

func (m *Manager) syncFrom(source *viewState) {
	if !source.adapter.Visible() || source.cache.Len() == 0 {
		return
	}
	entry, progress, ok := source.cache.Locate(source.adapter.Container().ScrollTop())
	if !ok {
		return
	}
	anchor := LogicalAnchor{ChunkID: entry.ChunkID, Progress: progress}
	m.last = &anchor
	m.apply(anchor, source.adapter.ID())
}

// apply moves every visible view except skip to the logical anchor
func (m *Manager) apply(anchor LogicalAnchor, skip string) {
	for _, v := range m.views {
		if v.adapter.ID() == skip || !v.adapter.Visible() || v.cache.Len() == 0 {
			continue
		}
		entry, ok := m.resolve(v.cache, anchor.ChunkID, 0, make(map[string]bool))
		if !ok {
			log.Printf("scrollsync: chunk %s cannot be resolved in view %s", anchor.ChunkID, v.adapter.ID())
			continue
		}

		container := v.adapter.Container()
		// a view already showing the anchor keeps its offset
		if cur, progress, ok := v.cache.Locate(container.ScrollTop()); ok &&
			cur.ChunkID == entry.ChunkID && math.Abs(progress-anchor.Progress)*entry.Height < m.opts.Epsilon {
			continue
		}
		target := entry.Top + entry.Height*anchor.Progress
		if limit := container.ContentHeight() - container.ViewportHeight(); limit > 0 {
			target = clamp(target, 0, limit)
		} else {
			target = max(target, 0)
		}
		if math.Abs(target-container.ScrollTop()) < m.opts.Epsilon {
			continue
		}
		before := container.ScrollTop()
		v.programmatic = true
		container.SetScrollTop(target)
		if container.ScrollTop() == before {
			// no scroll event follows a write that did not move the view
			v.programmatic = false
		}
	}
}

// resolve finds the entry for id, following collapsed groups down to their
// children and folded chunks up to their group
func (m *Manager) resolve(cache *LayoutCache, id string, depth int, visited map[string]bool) (Entry, bool) {
	if e, ok := cache.Lookup(id); ok {
		return e, true
	}
	if visited[id] {
		return Entry{}, false
	}
	visited[id] = true
	if depth >= m.opts.MaxResolveDepth {
		log.Printf("scrollsync: resolve depth %d reached at %s", m.opts.MaxResolveDepth, id)
		return Entry{}, false
	}

	if group := m.ctrl.CollapsedChunk(id); group != nil {
		for _, child := range group.Children {
			if e, ok := m.resolve(cache, child, depth+1, visited); ok {
				return e, true
			}
		}
	}
	if owner := m.ctrl.GroupOf(id); owner != "" {
		return m.resolve(cache, owner, depth+1, visited)
	}
	return Entry{}, false
}
