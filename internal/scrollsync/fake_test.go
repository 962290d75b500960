package scrollsync

type fakeContainer struct {
	top      float64
	viewport float64
	content  float64
	writes   int
}

func (c *fakeContainer) ScrollTop() float64      { return c.top }
func (c *fakeContainer) ViewportHeight() float64 { return c.viewport }
func (c *fakeContainer) ContentHeight() float64  { return c.content }

func (c *fakeContainer) SetScrollTop(offset float64) {
	c.top = offset
	c.writes++
}

// fakeView lays out the IDs it is given top to bottom with fixed heights
type fakeView struct {
	id        string
	container *fakeContainer
	heights   map[string]float64
	anchors   map[string][]Anchor
	hidden    bool
}

func newFakeView(id string, heights map[string]float64) *fakeView {
	return &fakeView{
		id:        id,
		container: &fakeContainer{viewport: 10, content: 10000},
		heights:   heights,
		anchors:   make(map[string][]Anchor),
	}
}

// layout places ids one after another; ids without a height are not rendered
func (v *fakeView) layout(ids ...string) {
	v.anchors = make(map[string][]Anchor)
	var top float64
	for _, id := range ids {
		h, ok := v.heights[id]
		if !ok {
			continue
		}
		v.anchors[id] = []Anchor{{Rects: []Rect{{Top: top, Bottom: top + h}}, Attached: true}}
		top += h
	}
}

func (v *fakeView) ID() string                      { return v.id }
func (v *fakeView) Container() ScrollContainer      { return v.container }
func (v *fakeView) Anchors(chunkID string) []Anchor { return v.anchors[chunkID] }
func (v *fakeView) Visible() bool                   { return !v.hidden }
