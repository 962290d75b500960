// Package model contains the element tree and chunk sequence of a rendered document
package model

// MaxDepth bounds every walk over an element tree
const MaxDepth = 512

// ChunkKind distinguishes chunks with a literal text payload from other leaves
type ChunkKind string

const (
	ChunkText  ChunkKind = "text"
	ChunkImage ChunkKind = "image"
)

// Element represents a single node in the source element tree
type Element struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Key        string            `json:"key,omitempty"`
	Text       string            `json:"text,omitempty"`
	HasText    bool              `json:"has_text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Element        `json:"children,omitempty"`
	Parent     *Element          `json:"-"` // Not persisted
}

// Chunk is an immutable leaf unit of a rendered document
type Chunk struct {
	ID         string    `json:"id"`
	ElementID  string    `json:"element_id"`
	Kind       ChunkKind `json:"kind,omitempty"`
	Text       string    `json:"text,omitempty"`
	SizeUnits  int       `json:"size_units,omitempty"`
	SizeExtent float64   `json:"size_extent,omitempty"`
}

// Document pairs an element tree with the chunk sequence rendered from it
type Document struct {
	Root   *Element `json:"root"`
	Chunks []Chunk  `json:"chunks"`
}

// NewDocument creates a document and restores parent pointers
func NewDocument(root *Element, chunks ...Chunk) *Document {
	d := &Document{Root: root, Chunks: chunks}
	d.RestoreParents()
	return d
}

// NewTextChunk creates a text chunk owned by the given element
func NewTextChunk(id, elementID, text string) Chunk {
	return Chunk{
		ID:        id,
		ElementID: elementID,
		Kind:      ChunkText,
		Text:      text,
		SizeUnits: len([]rune(text)),
	}
}

// HasTextPayload reports whether the chunk carries literal text
func (c Chunk) HasTextPayload() bool {
	return c.Kind == "" || c.Kind == ChunkText
}

// AddChild adds a child element to this element
func (e *Element) AddChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// RemoveChild removes a child element from this element
func (e *Element) RemoveChild(child *Element) {
	for idx, c := range e.Children {
		if c.ID == child.ID {
			e.Children = append(e.Children[:idx], e.Children[idx+1:]...)
			child.Parent = nil
			break
		}
	}
}

// AllElements returns every element of the tree in depth-first order.
// Elements below MaxDepth and repeated elements are skipped.
func (d *Document) AllElements() []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	var out []*Element
	walk(d.Root, func(el *Element, _ int) bool {
		out = append(out, el)
		return true
	})
	return out
}

// FindElementByID finds an element by its ID in the document
func (d *Document) FindElementByID(id string) *Element {
	var found *Element
	if d == nil || d.Root == nil {
		return nil
	}
	walk(d.Root, func(el *Element, _ int) bool {
		if el.ID == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// ChunkIDs returns the chunk IDs in document order
func (d *Document) ChunkIDs() []string {
	ids := make([]string, len(d.Chunks))
	for i, c := range d.Chunks {
		ids[i] = c.ID
	}
	return ids
}

// ChunkMap indexes the chunks by ID
func (d *Document) ChunkMap() map[string]Chunk {
	chunks := make(map[string]Chunk, len(d.Chunks))
	for _, c := range d.Chunks {
		chunks[c.ID] = c
	}
	return chunks
}

// RestoreParents reconstructs parent pointers, e.g. after JSON decoding
func (d *Document) RestoreParents() {
	if d == nil || d.Root == nil {
		return
	}
	d.Root.Parent = nil
	walk(d.Root, func(el *Element, _ int) bool {
		for _, child := range el.Children {
			if child != nil {
				child.Parent = el
			}
		}
		return true
	})
}

type frame struct {
	el    *Element
	depth int
}

// walk visits elements depth-first with an explicit stack. visit returns
// false to stop the walk.
func walk(root *Element, visit func(el *Element, depth int) bool) {
	seen := make(map[*Element]bool)
	stack := []frame{{el: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.el == nil || seen[top.el] || top.depth > MaxDepth {
			continue
		}
		seen[top.el] = true
		if !visit(top.el, top.depth) {
			return
		}
		for i := len(top.el.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{el: top.el.Children[i], depth: top.depth + 1})
		}
	}
}
