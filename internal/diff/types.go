package diff

import (
	"github.com/pstuifzand/chunkview/internal/model"
)

// NodeStatus is the comparison result for one element
type NodeStatus string

const (
	StatusEqual    NodeStatus = "equal"
	StatusInserted NodeStatus = "inserted"
	StatusDeleted  NodeStatus = "deleted"
	StatusModified NodeStatus = "modified"
	StatusMoved    NodeStatus = "moved"
)

// EditOp is one operation of an edit script
type EditOp string

const (
	OpEqual   EditOp = "equal"
	OpInsert  EditOp = "insert"
	OpDelete  EditOp = "delete"
	OpReplace EditOp = "replace"
)

// Granularity selects the token unit for text edits
type Granularity string

const (
	GranularityChar Granularity = "char"
	GranularityWord Granularity = "word"
	GranularityLine Granularity = "line"
)

// Options tunes the structural diff
type Options struct {
	Granularity Granularity
	// SimilarityThreshold is the minimum text similarity ratio (0..1) for
	// nearest-neighbour matching of otherwise unmatched siblings
	SimilarityThreshold float64
	// MaxDepth bounds the alignment work stack
	MaxDepth int
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		Granularity:         GranularityWord,
		SimilarityThreshold: 0.6,
		MaxDepth:            model.MaxDepth,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	switch o.Granularity {
	case GranularityChar, GranularityWord, GranularityLine:
	default:
		o.Granularity = def.Granularity
	}
	if o.SimilarityThreshold <= 0 || o.SimilarityThreshold > 1 {
		o.SimilarityThreshold = def.SimilarityThreshold
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = def.MaxDepth
	}
	return o
}

// TextEdit is one fragment of a text diff. Concatenating Before of all edits
// of a node yields the old text, concatenating After yields the new text.
type TextEdit struct {
	Op     EditOp `json:"op"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// AttrChange holds the old and new value of one attribute
type AttrChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// NodeDelta mirrors one element of the before/after trees. IDs are empty and
// indexes are -1 on the side where the element does not exist.
type NodeDelta struct {
	Status      NodeStatus
	ElementType string
	Key         string
	BeforeID    string
	AfterID     string
	BeforeIndex int
	AfterIndex  int
	BeforePath  []string
	AfterPath   []string
	AttrChanges map[string]AttrChange
	TextEdits   []TextEdit
	Children    []*NodeDelta

	// ChildrenReordered is set when matched children changed relative order
	ChildrenReordered bool
	// SubtreeChanged is set when this node or any descendant is not equal
	SubtreeChanged bool

	before *model.Element
	after  *model.Element
	parent *NodeDelta
}

// Walk visits d and its descendants in preorder
func (d *NodeDelta) Walk(visit func(node *NodeDelta, depth int)) {
	type item struct {
		node  *NodeDelta
		depth int
	}
	stack := []item{{node: d}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		visit(top.node, top.depth)
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: top.node.Children[i], depth: top.depth + 1})
		}
	}
}

// Stats aggregates the structural diff
type Stats struct {
	TotalNodes    int `json:"total_nodes"`
	NodesEqual    int `json:"nodes_equal"`
	NodesAdded    int `json:"nodes_added"`
	NodesRemoved  int `json:"nodes_removed"`
	NodesModified int `json:"nodes_modified"`
	NodesMoved    int `json:"nodes_moved"`
	TextAdded     int `json:"text_added"`
	TextRemoved   int `json:"text_removed"`
}

// Metrics are normalized ratios for summary display only
type Metrics struct {
	// ChangeDensity is the share of nodes that are not equal
	ChangeDensity float64 `json:"change_density"`
	// TextChurn is changed text relative to the total text of both versions
	TextChurn float64 `json:"text_churn"`
	// Growth is the relative change in node count
	Growth float64 `json:"growth"`
}

// StructuralDiff is the result of DiffStructure
type StructuralDiff struct {
	Root    *NodeDelta
	Index   map[string]*NodeDelta
	Stats   Stats
	Metrics Metrics
}

// Get looks up a delta by before or after element ID
func (d *StructuralDiff) Get(elementID string) *NodeDelta {
	return d.Index[elementID]
}

// ChunkRef identifies one side of a chunk delta
type ChunkRef struct {
	ChunkID   string          `json:"chunk_id"`
	ElementID string          `json:"element_id"`
	Kind      model.ChunkKind `json:"kind,omitempty"`
	Text      string          `json:"text"`
}

// ChunkDelta is one operation of the rendered diff. Delete carries only
// Before, insert only After, equal and replace carry both.
type ChunkDelta struct {
	Op        EditOp
	Before    *ChunkRef
	After     *ChunkRef
	TextEdits []TextEdit
}

// ElementID returns the owning element of the delta, preferring the after side
func (d ChunkDelta) ElementID() string {
	if d.After != nil {
		return d.After.ElementID
	}
	if d.Before != nil {
		return d.Before.ElementID
	}
	return ""
}

// RenderStats counts non-equal chunk operations
type RenderStats struct {
	Inserted    int `json:"inserted"`
	Deleted     int `json:"deleted"`
	Replaced    int `json:"replaced"`
	TextAdded   int `json:"text_added"`
	TextRemoved int `json:"text_removed"`
}

// IsZero reports whether no chunk changed
func (s RenderStats) IsZero() bool {
	return s == RenderStats{}
}

// ElementSummary aggregates chunk operations per owning element
type ElementSummary struct {
	ElementID  string         `json:"element_id"`
	Operations map[EditOp]int `json:"operations"`
	BeforeText string         `json:"before_text"`
	AfterText  string         `json:"after_text"`
}

// TextDelta is the absolute difference in rendered text length
func (s *ElementSummary) TextDelta() int {
	d := len([]rune(s.AfterText)) - len([]rune(s.BeforeText))
	if d < 0 {
		return -d
	}
	return d
}

// RenderedDiff is the result of DiffChunks
type RenderedDiff struct {
	Operations       []ChunkDelta
	Stats            RenderStats
	ElementSummaries map[string]*ElementSummary
}
