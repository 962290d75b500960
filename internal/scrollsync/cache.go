package scrollsync

import (
	"log"
	"sort"

	"github.com/pstuifzand/chunkview/internal/folding"
)

// Entry is the measured layout of one visible chunk or collapsed group
type Entry struct {
	ChunkID string
	Top     float64
	Bottom  float64
	// Height is at least 1
	Height float64
	// StartOffset is the sum of the heights of all preceding entries
	StartOffset float64
	IsCollapsed bool
}

// LayoutCache holds the entries of one view in visible order
type LayoutCache struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of entries
func (c *LayoutCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries
func (c *LayoutCache) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for a chunk or group ID
func (c *LayoutCache) Lookup(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Locate returns the entry containing offset and the progress through it.
// Offsets before the first or past the last entry clamp to that entry.
func (c *LayoutCache) Locate(offset float64) (Entry, float64, bool) {
	if c.Len() == 0 {
		return Entry{}, 0, false
	}
	// last entry starting at or above the offset
	i := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Top > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	e := c.entries[i]
	return e, clamp((offset-e.Top)/max(e.Height, 1), 0, 1), true
}

// measure builds the cache of one view from its anchors for every visible
// ID. A collapsed group the view does not render as a unit is measured
// through its children. IDs without an attached, measurable anchor are left
// out. Zero-height measurements are clamped to 1 and tops never move
// backwards so the entries stay sorted.
func measure(view ViewAdapter, visible []string, ctrl *folding.Controller) *LayoutCache {
	cache := &LayoutCache{index: make(map[string]int, len(visible))}
	var start, lastTop float64

	add := func(id string, collapsed bool) bool {
		rect, ok := unionAnchors(view.ID(), id, view.Anchors(id))
		if !ok {
			return false
		}
		top := rect.Top
		if len(cache.entries) > 0 && top < lastTop {
			log.Printf("scrollsync: view %s chunk %s measured above its predecessor (%.1f < %.1f)", view.ID(), id, top, lastTop)
			top = lastTop
		}
		height := max(rect.Bottom-top, 1)
		cache.index[id] = len(cache.entries)
		cache.entries = append(cache.entries, Entry{
			ChunkID:     id,
			Top:         top,
			Bottom:      top + height,
			Height:      height,
			StartOffset: start,
			IsCollapsed: collapsed,
		})
		start += height
		lastTop = top
		return true
	}

	for _, id := range visible {
		group := ctrl.CollapsedChunk(id)
		if add(id, group != nil) || group == nil {
			continue
		}
		for _, child := range group.Children {
			add(child, false)
		}
	}
	return cache
}

// unionAnchors merges every attached rectangle of a chunk into one extent
func unionAnchors(viewID, chunkID string, anchors []Anchor) (Rect, bool) {
	var out Rect
	found := false
	for _, anchor := range anchors {
		if !anchor.Attached {
			log.Printf("scrollsync: view %s chunk %s has a detached anchor, skipped", viewID, chunkID)
			continue
		}
		for _, r := range anchor.Rects {
			if r.Bottom < r.Top {
				r.Top, r.Bottom = r.Bottom, r.Top
			}
			if !found {
				out = r
				found = true
				continue
			}
			out.Top = min(out.Top, r.Top)
			out.Bottom = max(out.Bottom, r.Bottom)
		}
	}
	return out, found
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
