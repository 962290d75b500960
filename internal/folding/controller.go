// Package folding maintains the visible sequence of a chunked document: the
// original chunk order with contiguous runs replaced by collapsed groups.
//
// Collapsed groups always reference original chunk IDs, never other groups.
// Collapsing a run that contains whole groups absorbs them into one flat
// group over the original leaves.
package folding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pstuifzand/chunkview/internal/model"
)

var (
	// ErrSelectionConflict is returned when a selection only partly covers a
	// collapsed group or overlaps another staged selection
	ErrSelectionConflict = errors.New("selection conflicts with collapsed group or staged selection")
	// ErrInvalidRange is returned for empty or out-of-range index ranges
	ErrInvalidRange = errors.New("invalid selection range")
	// ErrNotContiguous is returned when selected IDs do not form one run in original order
	ErrNotContiguous = errors.New("selection is not contiguous")
	// ErrUnknownChunk is returned for IDs that are neither chunks nor groups
	ErrUnknownChunk = errors.New("unknown chunk id")
	// ErrReentrantMutation is returned when folding state is mutated from inside event dispatch
	ErrReentrantMutation = errors.New("folding state mutated during event dispatch")
	// ErrDuplicateChunk is returned by New when a chunk ID appears twice
	ErrDuplicateChunk = errors.New("duplicate chunk id")
)

// GroupPrefix prefixes synthetic collapsed-group IDs
const GroupPrefix = "collapsed_"

// CollapsedGroup replaces a contiguous run of original chunks in the visible sequence
type CollapsedGroup struct {
	ID       string
	Children []string
}

// Range is a half-open range [Start, End) of original chunk positions
type Range struct {
	Start int
	End   int
}

func (r Range) overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r Range) contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Controller owns the visible sequence, collapsed groups and staged selections
type Controller struct {
	original []string
	position map[string]int

	visible []string
	groups  map[string]*group
	owner   map[string]string
	retired map[string]bool

	pending []Range
	nextID  int

	clients     []*registration
	dispatching bool
}

type group struct {
	id  string
	run Range
}

// New creates a controller over the given chunk IDs in original order
func New(chunkIDs []string) (*Controller, error) {
	c := &Controller{
		original: make([]string, len(chunkIDs)),
		position: make(map[string]int, len(chunkIDs)),
		groups:   make(map[string]*group),
		owner:    make(map[string]string),
		retired:  make(map[string]bool),
	}
	copy(c.original, chunkIDs)
	for i, id := range chunkIDs {
		if _, exists := c.position[id]; exists {
			return nil, fmt.Errorf("failed to create folding controller: %w: %s", ErrDuplicateChunk, id)
		}
		c.position[id] = i
	}
	c.rebuildVisible()
	return c, nil
}

// NewFromDocument creates a controller over the chunks of doc
func NewFromDocument(doc *model.Document) (*Controller, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create folding controller: %w", err)
	}
	return New(doc.ChunkIDs())
}

// VisibleSequence returns the current visible order of chunk and group IDs
func (c *Controller) VisibleSequence() []string {
	out := make([]string, len(c.visible))
	copy(out, c.visible)
	return out
}

// OriginalSequence returns the chunk IDs the controller was created with
func (c *Controller) OriginalSequence() []string {
	out := make([]string, len(c.original))
	copy(out, c.original)
	return out
}

// IsCollapsed reports whether id is a currently collapsed group
func (c *Controller) IsCollapsed(id string) bool {
	_, ok := c.groups[id]
	return ok
}

// CollapsedChunk returns the group with the given ID, or nil
func (c *Controller) CollapsedChunk(id string) *CollapsedGroup {
	g, ok := c.groups[id]
	if !ok {
		return nil
	}
	return c.export(g)
}

// GroupOf returns the ID of the collapsed group containing chunkID, or ""
func (c *Controller) GroupOf(chunkID string) string {
	return c.owner[chunkID]
}

// CollapsedGroups returns all current groups in visible order
func (c *Controller) CollapsedGroups() []CollapsedGroup {
	out := make([]CollapsedGroup, 0, len(c.groups))
	for _, id := range c.visible {
		if g, ok := c.groups[id]; ok {
			out = append(out, *c.export(g))
		}
	}
	return out
}

// Flatten returns the visible sequence with every group replaced by its children
func (c *Controller) Flatten() []string {
	out := make([]string, 0, len(c.original))
	for _, id := range c.visible {
		if g, ok := c.groups[id]; ok {
			out = append(out, c.original[g.run.Start:g.run.End]...)
			continue
		}
		out = append(out, id)
	}
	return out
}

// Selections returns the staged selections as original position ranges
func (c *Controller) Selections() []Range {
	out := make([]Range, len(c.pending))
	copy(out, c.pending)
	return out
}

// AddSelection stages the visible range [start, end) for collapsing
func (c *Controller) AddSelection(start, end int) error {
	if err := c.guard("add selection"); err != nil {
		return err
	}
	if start < 0 || end > len(c.visible) || start >= end {
		return fmt.Errorf("%w: [%d, %d) of %d visible", ErrInvalidRange, start, end, len(c.visible))
	}
	run := Range{
		Start: c.spanOf(c.visible[start]).Start,
		End:   c.spanOf(c.visible[end-1]).End,
	}
	return c.stage(run)
}

// SelectByIDs stages the run covered by ids. IDs may be chunk or group IDs
// and must cover one contiguous run of the original order.
func (c *Controller) SelectByIDs(ids []string) error {
	if err := c.guard("select by ids"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no ids", ErrInvalidRange)
	}

	covered := make(map[int]bool)
	lo, hi := len(c.original), 0
	for _, id := range ids {
		if !c.known(id) || c.retired[id] {
			return fmt.Errorf("%w: %s", ErrUnknownChunk, id)
		}
		span := c.spanOf(id)
		for p := span.Start; p < span.End; p++ {
			covered[p] = true
		}
		lo = min(lo, span.Start)
		hi = max(hi, span.End)
	}
	if len(covered) != hi-lo {
		return fmt.Errorf("%w: %d ids span %d positions", ErrNotContiguous, len(covered), hi-lo)
	}
	return c.stage(Range{Start: lo, End: hi})
}

// AddSelections stages every visible range or none of them
func (c *Controller) AddSelections(ranges []Range) error {
	if err := c.guard("add selections"); err != nil {
		return err
	}
	staged := len(c.pending)
	for _, r := range ranges {
		if err := c.AddSelection(r.Start, r.End); err != nil {
			c.pending = c.pending[:staged]
			return err
		}
	}
	return nil
}

// ClearSelections drops all staged selections
func (c *Controller) ClearSelections() error {
	if err := c.guard("clear selections"); err != nil {
		return err
	}
	c.pending = nil
	return nil
}

// CommitSelections turns every staged selection into a collapsed group and
// emits one chunks-collapsed event listing the new group IDs. Selections are
// cleared even when nothing was staged.
func (c *Controller) CommitSelections() ([]string, error) {
	if err := c.guard("commit selections"); err != nil {
		return nil, err
	}
	pending := c.pending
	c.pending = nil

	sort.Slice(pending, func(i, j int) bool { return pending[i].Start < pending[j].Start })

	var created, absorbed []string
	for _, run := range pending {
		inside := c.groupsWithin(run)
		if len(inside) == 1 && c.groups[inside[0]].run == run {
			continue
		}
		for _, id := range inside {
			c.dropGroup(id)
			absorbed = append(absorbed, id)
		}
		created = append(created, c.addGroup(run))
	}

	if len(created) == 0 {
		return nil, nil
	}
	c.rebuildVisible()
	c.emit(Event{Type: EventChunksCollapsed, GroupIDs: created, Absorbed: absorbed})
	return created, nil
}

// ExpandChunk removes the collapsed group id. Known chunk IDs that are not a
// group head are a no-op.
func (c *Controller) ExpandChunk(id string) error {
	if err := c.guard("expand chunk"); err != nil {
		return err
	}
	if _, ok := c.groups[id]; !ok {
		if c.known(id) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownChunk, id)
	}
	c.dropGroup(id)
	c.rebuildVisible()
	c.emit(Event{Type: EventChunkExpanded, GroupIDs: []string{id}})
	return nil
}

// ExpandByChunkIDs expands every group named in ids or containing one of the
// chunks in ids, with a single chunk-expanded event.
func (c *Controller) ExpandByChunkIDs(ids []string) error {
	if err := c.guard("expand by chunk ids"); err != nil {
		return err
	}
	var targets []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if !c.known(id) {
			return fmt.Errorf("%w: %s", ErrUnknownChunk, id)
		}
		target := id
		if _, ok := c.groups[id]; !ok {
			target = c.owner[id]
		}
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return nil
	}
	for _, id := range targets {
		c.dropGroup(id)
	}
	c.rebuildVisible()
	c.emit(Event{Type: EventChunkExpanded, GroupIDs: targets})
	return nil
}

// ExpandAll expands every group and emits one state-reset event
func (c *Controller) ExpandAll() error {
	if err := c.guard("expand all"); err != nil {
		return err
	}
	removed := make([]string, 0, len(c.groups))
	for _, g := range c.CollapsedGroups() {
		removed = append(removed, g.ID)
		c.dropGroup(g.ID)
	}
	c.pending = nil
	c.rebuildVisible()
	c.emit(Event{Type: EventStateReset, GroupIDs: removed})
	return nil
}

func (c *Controller) stage(run Range) error {
	for _, staged := range c.pending {
		if staged.overlaps(run) {
			return fmt.Errorf("%w: [%d, %d) overlaps staged [%d, %d)",
				ErrSelectionConflict, run.Start, run.End, staged.Start, staged.End)
		}
	}
	for _, g := range c.groups {
		if g.run.overlaps(run) && !run.contains(g.run) {
			return fmt.Errorf("%w: [%d, %d) cuts through %s",
				ErrSelectionConflict, run.Start, run.End, g.id)
		}
	}
	c.pending = append(c.pending, run)
	return nil
}

// spanOf returns the original positions covered by a visible ID
func (c *Controller) spanOf(id string) Range {
	if g, ok := c.groups[id]; ok {
		return g.run
	}
	p := c.position[id]
	return Range{Start: p, End: p + 1}
}

func (c *Controller) known(id string) bool {
	if _, ok := c.position[id]; ok {
		return true
	}
	if _, ok := c.groups[id]; ok {
		return true
	}
	return c.retired[id]
}

func (c *Controller) groupsWithin(run Range) []string {
	var ids []string
	for p := run.Start; p < run.End; p++ {
		if id := c.owner[c.original[p]]; id != "" && c.groups[id].run.Start == p {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Controller) addGroup(run Range) string {
	id := c.newGroupID()
	c.groups[id] = &group{id: id, run: run}
	for p := run.Start; p < run.End; p++ {
		c.owner[c.original[p]] = id
	}
	return id
}

func (c *Controller) dropGroup(id string) {
	g, ok := c.groups[id]
	if !ok {
		return
	}
	for p := g.run.Start; p < g.run.End; p++ {
		delete(c.owner, c.original[p])
	}
	delete(c.groups, id)
	c.retired[id] = true
}

func (c *Controller) newGroupID() string {
	for {
		c.nextID++
		id := fmt.Sprintf("%s%d", GroupPrefix, c.nextID)
		if !c.known(id) {
			return id
		}
	}
}

// rebuildVisible derives the visible sequence from the original order and
// the current groups
func (c *Controller) rebuildVisible() {
	visible := make([]string, 0, len(c.original))
	for p, id := range c.original {
		gid := c.owner[id]
		if gid == "" {
			visible = append(visible, id)
			continue
		}
		if c.groups[gid].run.Start == p {
			visible = append(visible, gid)
		}
	}
	c.visible = visible
}

func (c *Controller) export(g *group) *CollapsedGroup {
	children := make([]string, g.run.End-g.run.Start)
	copy(children, c.original[g.run.Start:g.run.End])
	return &CollapsedGroup{ID: g.id, Children: children}
}

func (c *Controller) snapshot() State {
	return State{
		Visible: c.VisibleSequence(),
		Groups:  c.CollapsedGroups(),
	}
}
