// Package scrollsync keeps two or more independently laid-out views of the
// same chunk sequence scrolled to the same logical position.
//
// Positions are exchanged as a logical anchor: a chunk ID from the folding
// controller's visible sequence plus the fractional progress through that
// chunk. Each view keeps its own layout cache, so chunks may have a
// different height in every view.
package scrollsync

import (
	"strings"
	"time"
)

// Rect is a measured vertical extent in content coordinates
type Rect struct {
	Top    float64
	Bottom float64
}

// Height returns the extent of the rectangle
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Anchor is one measurable region that renders a chunk. Inline content that
// wraps over several lines reports one rectangle per line.
type Anchor struct {
	Rects []Rect
	// Attached is false when the region is not on a renderable surface
	Attached bool
}

// ScrollContainer is the scrollable box of a view
type ScrollContainer interface {
	ScrollTop() float64
	SetScrollTop(offset float64)
	ViewportHeight() float64
	ContentHeight() float64
}

// ViewAdapter is implemented by each rendering surface
type ViewAdapter interface {
	ID() string
	Container() ScrollContainer
	// Anchors returns the regions that render chunkID, or none when the
	// chunk is not currently rendered in this view
	Anchors(chunkID string) []Anchor
	// Visible is false while the view is hidden, e.g. in single-pane mode
	Visible() bool
}

// Reason is a set of causes for a layout cache rebuild
type Reason uint8

const (
	ReasonFolding Reason = 1 << iota
	ReasonResize
	ReasonMutation
	ReasonAssetLoad
)

// String returns the reasons joined with "|"
func (r Reason) String() string {
	var parts []string
	if r&ReasonFolding != 0 {
		parts = append(parts, "folding")
	}
	if r&ReasonResize != 0 {
		parts = append(parts, "resize")
	}
	if r&ReasonMutation != 0 {
		parts = append(parts, "mutation")
	}
	if r&ReasonAssetLoad != 0 {
		parts = append(parts, "asset-load")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// LogicalAnchor is the view-independent scroll position
type LogicalAnchor struct {
	ChunkID  string
	Progress float64
}

// Options tunes the manager
type Options struct {
	// QuietWindow is how long the active source keeps its lock after its
	// last scroll event
	QuietWindow time.Duration
	// MaxResolveDepth bounds resolution through collapsed groups
	MaxResolveDepth int
	// Epsilon is the smallest offset change that is written to a view
	Epsilon float64
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		QuietWindow:     150 * time.Millisecond,
		MaxResolveDepth: 8,
		Epsilon:         0.5,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.QuietWindow <= 0 {
		o.QuietWindow = def.QuietWindow
	}
	if o.MaxResolveDepth <= 0 {
		o.MaxResolveDepth = def.MaxResolveDepth
	}
	if o.Epsilon <= 0 {
		o.Epsilon = def.Epsilon
	}
	return o
}
