package diff

import (
	"sort"
)

// NodeWidget is the JSON shape of one structural delta node
type NodeWidget struct {
	Status            NodeStatus            `json:"status"`
	ElementType       string                `json:"element_type"`
	Key               *string               `json:"key"`
	BeforeID          *string               `json:"before_id"`
	AfterID           *string               `json:"after_id"`
	BeforeIndex       *int                  `json:"before_index"`
	AfterIndex        *int                  `json:"after_index"`
	BeforePath        []string              `json:"before_path,omitempty"`
	AfterPath         []string              `json:"after_path,omitempty"`
	AttrChanges       map[string]AttrChange `json:"attr_changes,omitempty"`
	TextEdits         []TextEdit            `json:"text_edits"`
	ChildrenReordered bool                  `json:"children_reordered"`
	SubtreeChanged    bool                  `json:"subtree_changed"`
	Children          []*NodeWidget         `json:"children"`
}

// StructuralWidget is the JSON payload of a structural diff
type StructuralWidget struct {
	Root    *NodeWidget `json:"root"`
	Stats   Stats       `json:"stats"`
	Metrics Metrics     `json:"metrics"`
}

// ChunkWidget is the JSON shape of one chunk operation
type ChunkWidget struct {
	Op        EditOp     `json:"op"`
	Before    *ChunkRef  `json:"before"`
	After     *ChunkRef  `json:"after"`
	TextEdits []TextEdit `json:"text_edits,omitempty"`
}

// RenderedWidget is the JSON payload of a rendered diff
type RenderedWidget struct {
	Chunks           []ChunkWidget     `json:"chunks"`
	Stats            RenderStats       `json:"stats"`
	ElementSummaries []*ElementSummary `json:"element_summaries"`
}

// WidgetData converts the structural diff into its JSON payload
func (d *StructuralDiff) WidgetData() *StructuralWidget {
	widgets := make(map[*NodeDelta]*NodeWidget)
	d.Root.Walk(func(node *NodeDelta, _ int) {
		w := &NodeWidget{
			Status:            node.Status,
			ElementType:       node.ElementType,
			Key:               optionalString(node.Key),
			BeforeID:          optionalString(node.BeforeID),
			AfterID:           optionalString(node.AfterID),
			BeforePath:        node.BeforePath,
			AfterPath:         node.AfterPath,
			AttrChanges:       node.AttrChanges,
			TextEdits:         node.TextEdits,
			ChildrenReordered: node.ChildrenReordered,
			SubtreeChanged:    node.SubtreeChanged,
			Children:          []*NodeWidget{},
		}
		if w.TextEdits == nil {
			w.TextEdits = []TextEdit{}
		}
		if node.BeforeID != "" {
			w.BeforeIndex = optionalInt(node.BeforeIndex)
		}
		if node.AfterID != "" {
			w.AfterIndex = optionalInt(node.AfterIndex)
		}
		widgets[node] = w
		if parent, ok := widgets[node.parent]; ok && node.parent != nil {
			parent.Children = append(parent.Children, w)
		}
	})
	return &StructuralWidget{Root: widgets[d.Root], Stats: d.Stats, Metrics: d.Metrics}
}

// WidgetData converts the rendered diff into its JSON payload. Element
// summaries are sorted by element ID.
func (d *RenderedDiff) WidgetData() *RenderedWidget {
	w := &RenderedWidget{
		Chunks:           make([]ChunkWidget, 0, len(d.Operations)),
		Stats:            d.Stats,
		ElementSummaries: make([]*ElementSummary, 0, len(d.ElementSummaries)),
	}
	for _, op := range d.Operations {
		w.Chunks = append(w.Chunks, ChunkWidget{Op: op.Op, Before: op.Before, After: op.After, TextEdits: op.TextEdits})
	}
	for _, id := range getSortedIDs(d.ElementSummaries) {
		w.ElementSummaries = append(w.ElementSummaries, d.ElementSummaries[id])
	}
	return w
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

// getSortedIDs returns a sorted slice of keys from a map
func getSortedIDs[T any](items map[string]T) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
