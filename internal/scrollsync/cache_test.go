package scrollsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/folding"
)

func TestMeasure(t *testing.T) {
	ctrl, err := folding.New([]string{"c1", "c2", "c3", "c4"})
	require.NoError(t, err)

	view := newFakeView("A", nil)
	view.anchors = map[string][]Anchor{
		"c1": {{Rects: []Rect{{Top: 0, Bottom: 0}}, Attached: true}},
		"c2": {{Rects: []Rect{{Top: 1, Bottom: 3}}, Attached: false}},
		"c3": {
			{Rects: []Rect{{Top: 5, Bottom: 7}, {Top: 7, Bottom: 12}}, Attached: true},
			{Rects: []Rect{{Top: 4, Bottom: 6}}, Attached: true},
		},
	}

	cache := measure(view, ctrl.VisibleSequence(), ctrl)

	assert.Equal(t, []Entry{
		{ChunkID: "c1", Top: 0, Bottom: 1, Height: 1, StartOffset: 0},
		{ChunkID: "c3", Top: 4, Bottom: 12, Height: 8, StartOffset: 1},
	}, cache.Entries())

	_, ok := cache.Lookup("c2")
	assert.False(t, ok)
	e, ok := cache.Lookup("c3")
	require.True(t, ok)
	assert.Equal(t, 8.0, e.Height)
}

func TestMeasureCollapsedGroup(t *testing.T) {
	ctrl, err := folding.New([]string{"c1", "c2", "c3"})
	require.NoError(t, err)
	require.NoError(t, ctrl.AddSelection(1, 3))
	groups, err := ctrl.CommitSelections()
	require.NoError(t, err)
	require.Len(t, groups, 1)

	unit := newFakeView("A", map[string]float64{"c1": 10, groups[0]: 4})
	unit.layout(ctrl.VisibleSequence()...)
	inline := newFakeView("B", map[string]float64{"c1": 10, "c2": 5, "c3": 5})
	inline.layout(ctrl.Flatten()...)

	unitCache := measure(unit, ctrl.VisibleSequence(), ctrl)
	require.Equal(t, 2, unitCache.Len())
	assert.True(t, unitCache.Entries()[1].IsCollapsed)

	inlineCache := measure(inline, ctrl.VisibleSequence(), ctrl)
	require.Equal(t, 3, inlineCache.Len())
	assert.Equal(t, "c3", inlineCache.Entries()[2].ChunkID)
	assert.False(t, inlineCache.Entries()[2].IsCollapsed)
}

func TestLocate(t *testing.T) {
	cache := &LayoutCache{
		entries: []Entry{
			{ChunkID: "c1", Top: 0, Bottom: 1, Height: 1},
			{ChunkID: "c3", Top: 4, Bottom: 12, Height: 8, StartOffset: 1},
		},
	}

	tests := []struct {
		offset   float64
		chunk    string
		progress float64
	}{
		{offset: -5, chunk: "c1", progress: 0},
		{offset: 0, chunk: "c1", progress: 0},
		{offset: 2, chunk: "c1", progress: 1},
		{offset: 8, chunk: "c3", progress: 0.5},
		{offset: 100, chunk: "c3", progress: 1},
	}
	for _, tt := range tests {
		e, progress, ok := cache.Locate(tt.offset)
		require.True(t, ok)
		assert.Equal(t, tt.chunk, e.ChunkID, "offset %v", tt.offset)
		assert.InDelta(t, tt.progress, progress, 1e-9, "offset %v", tt.offset)
	}

	_, _, ok := (&LayoutCache{}).Locate(10)
	assert.False(t, ok)
}
