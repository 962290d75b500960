package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/model"
	"github.com/pstuifzand/chunkview/internal/scrollsync"
	"github.com/pstuifzand/chunkview/internal/theme"
)

func paneDocument() *model.Document {
	root := &model.Element{ID: "root", Type: "prompt"}
	root.AddChild(&model.Element{ID: "e1", Type: "static"})
	root.AddChild(&model.Element{ID: "e2", Type: "param"})
	return model.NewDocument(root,
		model.NewTextChunk("c1", "e1", "Hello world"),
		model.NewTextChunk("c2", "e1", "second chunk here"),
		model.Chunk{ID: "c3", ElementID: "e2", Kind: model.ChunkImage},
		model.NewTextChunk("c4", "e2", "a\nb"),
	)
}

func newPanes(t *testing.T) (*folding.Controller, *Pane, *Pane) {
	t.Helper()
	doc := paneDocument()
	ctrl, err := folding.NewFromDocument(doc)
	require.NoError(t, err)

	lit := NewPane("literal", "Source", PaneLiteral, doc, ctrl)
	ren := NewPane("rendered", "Output", PaneRendered, doc, ctrl)
	lit.Resize(20, 2)
	ren.Resize(20, 2)
	lit.Layout()
	ren.Layout()
	return ctrl, lit, ren
}

func rect(top, bottom float64) []scrollsync.Anchor {
	return []scrollsync.Anchor{{Rects: []scrollsync.Rect{{Top: top, Bottom: bottom}}, Attached: true}}
}

func TestLiteralLayout(t *testing.T) {
	_, lit, _ := newPanes(t)

	assert.Equal(t, 6.0, lit.ContentHeight())
	assert.Equal(t, rect(0, 1), lit.Anchors("c1"))
	assert.Equal(t, rect(1, 3), lit.Anchors("c2"))
	assert.Equal(t, rect(3, 4), lit.Anchors("c3"))
	assert.Equal(t, rect(4, 6), lit.Anchors("c4"))
	assert.Nil(t, lit.Anchors("missing"))
}

func TestRenderedLayout(t *testing.T) {
	_, _, ren := newPanes(t)

	assert.Equal(t, 4.0, ren.ContentHeight())
	assert.Equal(t, rect(0, 1), ren.Anchors("c1"))
	assert.Equal(t, rect(0, 2), ren.Anchors("c2"), "chunk flows over two rows")
	assert.Equal(t, rect(1, 2), ren.Anchors("c3"))
	assert.Equal(t, rect(2, 4), ren.Anchors("c4"))
}

func TestLayoutFollowsFolding(t *testing.T) {
	ctrl, lit, ren := newPanes(t)
	require.NoError(t, ctrl.AddSelection(1, 3))
	groups, err := ctrl.CommitSelections()
	require.NoError(t, err)
	require.Len(t, groups, 1)

	lit.Layout()
	ren.Layout()

	assert.Equal(t, 4.0, lit.ContentHeight())
	assert.Equal(t, rect(1, 2), lit.Anchors(groups[0]))
	assert.Nil(t, lit.Anchors("c2"), "folded chunks are not rendered")
	assert.NotEmpty(t, ren.Anchors(groups[0]))
}

func TestScrollNotifications(t *testing.T) {
	_, lit, _ := newPanes(t)
	var events []string
	lit.SetNotify(func(id string) { events = append(events, id) })

	lit.ScrollBy(1)
	lit.SetScrollTop(1)
	lit.ScrollTo(100)
	lit.ScrollBy(-100)

	assert.Equal(t, []string{"literal", "literal", "literal"}, events)
	assert.Equal(t, 0.0, lit.ScrollTop())

	lit.ScrollTo(100)
	assert.Equal(t, 4.0, lit.ScrollTop(), "clamped to content minus viewport")
	assert.Equal(t, "c4", lit.TopEntry())
}

func TestPanesStayInSync(t *testing.T) {
	ctrl, lit, ren := newPanes(t)
	sched := scrollsync.NewManualScheduler()
	mgr, err := scrollsync.New(ctrl, sched, scrollsync.DefaultOptions())
	require.NoError(t, err)

	var pending []string
	notify := func(id string) { pending = append(pending, id) }
	lit.SetNotify(notify)
	ren.SetNotify(notify)
	drain := func() {
		for len(pending) > 0 {
			id := pending[0]
			pending = pending[1:]
			mgr.HandleScroll(id)
		}
	}

	require.NoError(t, mgr.AddView(lit))
	require.NoError(t, mgr.AddView(ren))
	sched.RunFrames()

	lit.ScrollTo(2)
	drain()

	assert.Equal(t, 1.0, ren.ScrollTop(), "midpoint of c2 maps to midpoint of c2")
	anchor, ok := mgr.LastAnchor()
	require.True(t, ok)
	assert.Equal(t, scrollsync.LogicalAnchor{ChunkID: "c2", Progress: 0.5}, anchor)
	assert.Equal(t, "literal", mgr.ActiveSource())

	sched.Advance(scrollsync.DefaultOptions().QuietWindow)
	assert.Empty(t, mgr.ActiveSource())
}

func TestPaneDraw(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := NewScreenFrom(sim, theme.Default())
	require.NoError(t, err)
	defer screen.Close()
	sim.SetSize(20, 4)
	screen.Size()

	_, lit, _ := newPanes(t)
	lit.Draw(screen, 0, 0, true, map[string]bool{"c2": true})
	screen.Show()

	assert.Contains(t, simRow(sim, 0), "Source (literal)")
	assert.Equal(t, "e1│ Hello world", strings.TrimRight(simRow(sim, 1), " "))
	assert.Equal(t, "e1│ second chunk", strings.TrimRight(simRow(sim, 2), " "))

	_, _, style, _ := sim.GetContent(4, 2)
	_, _, plain, _ := sim.GetContent(4, 1)
	assert.NotEqual(t, plain, style, "selected chunk is highlighted")
}

func simRow(sim tcell.SimulationScreen, y int) string {
	cells, w, _ := sim.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		cell := cells[y*w+x]
		if len(cell.Runes) > 0 {
			sb.WriteString(string(cell.Runes))
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}
