package ui

import (
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/model"
	"github.com/pstuifzand/chunkview/internal/scrollsync"
)

// PaneMode selects how a pane lays out the visible sequence
type PaneMode int

const (
	// PaneLiteral puts every visible entry on its own lines, prefixed with
	// the owning element ID
	PaneLiteral PaneMode = iota
	// PaneRendered flows chunk text inline the way the rendered document reads
	PaneRendered
)

func (m PaneMode) String() string {
	if m == PaneRendered {
		return "rendered"
	}
	return "literal"
}

type segmentKind int

const (
	segText segmentKind = iota
	segPrefix
	segGroup
	segAsset
)

type segment struct {
	id   string
	text string
	kind segmentKind
}

// Pane is one terminal view of a document. It is both the scroll container
// and the view adapter used by the scroll sync manager. Content coordinates
// are terminal rows.
type Pane struct {
	id    string
	title string
	mode  PaneMode
	ctrl  *folding.Controller

	chunks map[string]model.Chunk

	width  int
	height int
	top    float64
	hidden bool

	lines   [][]segment
	anchors map[string][]scrollsync.Anchor

	notify     func(viewID string)
	highlights map[string]tcell.Color
}

// NewPane creates a pane over the chunks of doc as folded by ctrl
func NewPane(id, title string, mode PaneMode, doc *model.Document, ctrl *folding.Controller) *Pane {
	chunks := doc.ChunkMap()
	return &Pane{
		id:      id,
		title:   title,
		mode:    mode,
		ctrl:    ctrl,
		chunks:  chunks,
		anchors: make(map[string][]scrollsync.Anchor),
	}
}

// ID returns the view ID
func (p *Pane) ID() string {
	return p.id
}

// Title returns the pane title
func (p *Pane) Title() string {
	return p.title
}

// Mode returns the layout mode
func (p *Pane) Mode() PaneMode {
	return p.mode
}

// Container returns the pane itself
func (p *Pane) Container() scrollsync.ScrollContainer {
	return p
}

// Anchors returns the row rectangles that render chunkID
func (p *Pane) Anchors(chunkID string) []scrollsync.Anchor {
	return p.anchors[chunkID]
}

// Visible reports whether the pane is shown
func (p *Pane) Visible() bool {
	return !p.hidden
}

// SetHidden hides or shows the pane
func (p *Pane) SetHidden(hidden bool) {
	p.hidden = hidden
}

// SetNotify registers the callback that receives scroll events. It fires
// for every change of the scroll offset, whoever caused it.
func (p *Pane) SetNotify(fn func(viewID string)) {
	p.notify = fn
}

// SetHighlights colours chunks by ID; nil clears all highlights
func (p *Pane) SetHighlights(h map[string]tcell.Color) {
	p.highlights = h
}

// ScrollTop returns the current offset in rows
func (p *Pane) ScrollTop() float64 {
	return p.top
}

// SetScrollTop moves the pane to offset
func (p *Pane) SetScrollTop(offset float64) {
	offset = math.Max(offset, 0)
	if offset == p.top {
		return
	}
	p.top = offset
	if p.notify != nil {
		p.notify(p.id)
	}
}

// ViewportHeight returns the number of content rows on screen
func (p *Pane) ViewportHeight() float64 {
	return float64(p.height)
}

// ContentHeight returns the number of laid out rows
func (p *Pane) ContentHeight() float64 {
	return float64(len(p.lines))
}

// ScrollBy moves the pane by rows, clamped to the content
func (p *Pane) ScrollBy(rows float64) {
	p.ScrollTo(p.top + rows)
}

// ScrollTo moves the pane to an absolute row, clamped to the content
func (p *Pane) ScrollTo(row float64) {
	limit := math.Max(p.ContentHeight()-p.ViewportHeight(), 0)
	p.SetScrollTop(math.Min(math.Max(row, 0), limit))
}

// Resize sets the content area and reports whether the layout must be
// rebuilt
func (p *Pane) Resize(width, height int) bool {
	changed := width != p.width
	p.width = width
	p.height = height
	return changed
}

// TopEntry returns the visible entry on the first row on screen
func (p *Pane) TopEntry() string {
	row := int(math.Floor(p.top))
	for r := row; r >= 0 && r < len(p.lines); r-- {
		for _, seg := range p.lines[r] {
			if seg.kind != segPrefix {
				return seg.id
			}
		}
	}
	return ""
}

// Layout rebuilds rows and anchors from the current visible sequence
func (p *Pane) Layout() {
	p.lines = nil
	p.anchors = make(map[string][]scrollsync.Anchor)
	if p.width <= 0 {
		return
	}
	visible := p.ctrl.VisibleSequence()
	if p.mode == PaneRendered {
		p.layoutRendered(visible)
	} else {
		p.layoutLiteral(visible)
	}
}

func (p *Pane) layoutLiteral(visible []string) {
	for _, id := range visible {
		if g := p.ctrl.CollapsedChunk(id); g != nil {
			p.appendLine(segment{id: id, text: fmt.Sprintf("▸ %d chunks folded", len(g.Children)), kind: segGroup})
			continue
		}
		c, ok := p.chunks[id]
		if !ok {
			log.Printf("pane %s: no chunk %s", p.id, id)
			continue
		}

		prefix := c.ElementID + "│ "
		avail := p.width - StringWidth(prefix)
		if avail < 1 {
			prefix, avail = "", p.width
		}
		body, kind := c.Text, segText
		if !c.HasTextPayload() {
			body, kind = assetLabel(c), segAsset
		}
		indent := strings.Repeat(" ", StringWidth(prefix))
		for i, text := range WrapText(body, avail) {
			pre := indent
			if i == 0 {
				pre = prefix
			}
			p.appendLine(segment{id: id, text: pre, kind: segPrefix}, segment{id: id, text: text, kind: kind})
		}
	}
}

func (p *Pane) layoutRendered(visible []string) {
	var cur []segment
	used := 0
	newline := func() {
		p.lines = append(p.lines, cur)
		cur, used = nil, 0
	}
	place := func(id, text string, kind segmentKind) {
		p.addAnchor(id, len(p.lines))
		cur = append(cur, segment{id: id, text: text, kind: kind})
		used += StringWidth(text)
	}
	// token places an unbreakable label
	token := func(id, text string, kind segmentKind) {
		if used > 0 && used+StringWidth(text) > p.width {
			newline()
		}
		place(id, TruncateToWidth(text, p.width), kind)
	}

	for _, id := range visible {
		if g := p.ctrl.CollapsedChunk(id); g != nil {
			token(id, fmt.Sprintf("[+%d]", len(g.Children)), segGroup)
			continue
		}
		c, ok := p.chunks[id]
		if !ok {
			log.Printf("pane %s: no chunk %s", p.id, id)
			continue
		}
		if !c.HasTextPayload() {
			token(id, assetLabel(c), segAsset)
			continue
		}

		for i, part := range strings.Split(c.Text, "\n") {
			if i > 0 {
				newline()
			}
			if part == "" {
				place(id, "", segText)
				continue
			}
			for part != "" {
				idx, _ := CalculateBreakPoint(part, p.width-used)
				midWord := idx > 0 && idx < len(part) && part[idx-1] != ' '
				if used > 0 && (idx == 0 || midWord) {
					newline()
					continue
				}
				if idx == 0 {
					_, idx = utf8.DecodeRuneInString(part)
				}
				place(id, part[:idx], segText)
				part = part[idx:]
				if part != "" {
					newline()
				}
			}
		}
	}
	if len(cur) > 0 || len(p.lines) == 0 {
		p.lines = append(p.lines, cur)
	}
}

func (p *Pane) appendLine(segs ...segment) {
	row := len(p.lines)
	p.lines = append(p.lines, segs)
	if len(segs) > 0 {
		p.addAnchor(segs[0].id, row)
	}
}

// addAnchor extends the anchor of id with row, merging adjacent rows
func (p *Pane) addAnchor(id string, row int) {
	rect := scrollsync.Rect{Top: float64(row), Bottom: float64(row + 1)}
	anchors := p.anchors[id]
	if n := len(anchors); n > 0 {
		rects := anchors[n-1].Rects
		last := &rects[len(rects)-1]
		if last.Bottom >= rect.Top {
			last.Bottom = math.Max(last.Bottom, rect.Bottom)
			return
		}
		anchors[n-1].Rects = append(rects, rect)
		return
	}
	p.anchors[id] = []scrollsync.Anchor{{Rects: []scrollsync.Rect{rect}, Attached: true}}
}

func assetLabel(c model.Chunk) string {
	return fmt.Sprintf("[%s %s]", c.Kind, c.ID)
}

// Draw renders the title row at (x, y) and the content rows below it.
// selected marks visible entries that are part of a pending fold selection.
func (p *Pane) Draw(screen *Screen, x, y int, active bool, selected map[string]bool) {
	if p.hidden {
		return
	}

	titleStyle := screen.PaneBorderStyle(active)
	screen.FillRow(x, y, p.width, titleStyle)
	title := fmt.Sprintf(" %s (%s) ", p.title, p.mode)
	if active {
		title = "▶" + title
	}
	screen.DrawStringLimited(x, y, title, p.width, titleStyle)

	first := int(math.Floor(p.top))
	for r := 0; r < p.height; r++ {
		row := y + 1 + r
		screen.FillRow(x, row, p.width, screen.BackgroundStyle())
		idx := first + r
		if idx >= len(p.lines) {
			continue
		}
		col := 0
		for _, seg := range p.lines[idx] {
			if col >= p.width {
				break
			}
			col += screen.DrawStringLimited(x+col, row, seg.text, p.width-col, p.segmentStyle(screen, seg, selected))
		}
	}
}

func (p *Pane) segmentStyle(screen *Screen, seg segment, selected map[string]bool) tcell.Style {
	switch {
	case seg.kind == segPrefix:
		return screen.PaneBorderStyle(false)
	case selected[seg.id]:
		return screen.PaneSelectionStyle()
	case seg.kind == segGroup:
		return screen.GroupPlaceholderStyle()
	}
	if c, ok := p.highlights[seg.id]; ok {
		return screen.DiffStyle(c)
	}
	return screen.PaneTextStyle()
}
