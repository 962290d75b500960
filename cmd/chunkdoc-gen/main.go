package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/pstuifzand/chunkview/internal/model"
	"github.com/pstuifzand/chunkview/internal/storage"
)

type genOptions struct {
	messages int
	parts    int
	editRate float64
	seed     uint64
}

func main() {
	messages := flag.Int("messages", 20, "Number of message elements to generate")
	parts := flag.Int("parts", 3, "Maximum parts per message")
	editRate := flag.Float64("edit-rate", 0.2, "Share of elements changed in the after document")
	seed := flag.Uint64("seed", 1, "Random seed")
	output := flag.String("output", "sample", "Output path prefix; writes <prefix>_before.json and <prefix>_after.json")
	flag.Parse()

	if *messages < 1 || *parts < 1 {
		fmt.Fprintf(os.Stderr, "messages and parts must be at least 1\n")
		os.Exit(1)
	}
	if *editRate < 0 || *editRate > 1 {
		fmt.Fprintf(os.Stderr, "edit-rate must be between 0 and 1\n")
		os.Exit(1)
	}

	opts := genOptions{messages: *messages, parts: *parts, editRate: *editRate, seed: *seed}
	before, after := generatePair(opts)

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create directory: %v\n", err)
			os.Exit(1)
		}
	}
	for _, out := range []struct {
		name string
		doc  *model.Document
	}{{"before", before}, {"after", after}} {
		path := fmt.Sprintf("%s_%s.json", *output, out.name)
		doc := out.doc
		if err := storage.NewJSONStore(path).Save(doc); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Saved %s: %d elements, %d chunks\n", path, len(doc.AllElements()), len(doc.Chunks))
	}
}

// generator hands out stable IDs and random content
type generator struct {
	rng       *rand.Rand
	nextElem  int
	nextChunk int
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *generator) elementID() string {
	g.nextElem++
	return fmt.Sprintf("e%d", g.nextElem)
}

func (g *generator) chunkID() string {
	g.nextChunk++
	return fmt.Sprintf("c%d", g.nextChunk)
}

// generatePair builds a document and an edited copy of it. The copy
// changes text, inserts and deletes messages and moves one message.
func generatePair(opts genOptions) (before, after *model.Document) {
	g := newGenerator(opts.seed)

	root := &model.Element{ID: "root", Type: "prompt"}
	for i := 0; i < opts.messages; i++ {
		root.AddChild(g.message(i, opts.parts))
	}
	before = model.NewDocument(root, renderChunks(g, root)...)

	edited := cloneElement(root)
	g.mutate(edited, opts)
	after = model.NewDocument(edited, renderChunks(g, edited)...)
	return before, after
}

func (g *generator) message(index, maxParts int) *model.Element {
	role := "user"
	if index%2 == 1 {
		role = "assistant"
	}
	msg := &model.Element{
		ID:         g.elementID(),
		Type:       "message",
		Key:        fmt.Sprintf("msg-%d", index),
		Attributes: map[string]string{"role": role},
	}
	n := 1 + g.rng.IntN(maxParts)
	for p := 0; p < n; p++ {
		if g.rng.IntN(8) == 0 {
			msg.AddChild(&model.Element{ID: g.elementID(), Type: "image", Attributes: map[string]string{"src": fmt.Sprintf("img-%d-%d.png", index, p)}})
			continue
		}
		text := g.sentences(1 + g.rng.IntN(3))
		msg.AddChild(&model.Element{ID: g.elementID(), Type: "text", Text: text, HasText: true})
	}
	return msg
}

var words = []string{
	"chunk", "fold", "render", "prompt", "token", "view", "scroll", "anchor",
	"element", "tree", "diff", "layout", "cache", "frame", "group", "sequence",
	"literal", "output", "context", "message", "system", "value", "key", "order",
}

func (g *generator) sentences(n int) string {
	var sb strings.Builder
	for s := 0; s < n; s++ {
		if s > 0 {
			sb.WriteString(" ")
		}
		count := 4 + g.rng.IntN(8)
		for w := 0; w < count; w++ {
			word := words[g.rng.IntN(len(words))]
			if w == 0 {
				word = strings.ToUpper(word[:1]) + word[1:]
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(word)
		}
		sb.WriteString(".")
	}
	return sb.String()
}

// renderChunks flattens the tree into chunks, one per sentence of text leaves
// and one per image
func renderChunks(g *generator, root *model.Element) []model.Chunk {
	var chunks []model.Chunk
	for _, msg := range root.Children {
		for _, part := range msg.Children {
			switch part.Type {
			case "image":
				chunks = append(chunks, model.Chunk{ID: g.chunkID(), ElementID: part.ID, Kind: model.ChunkImage, SizeUnits: 1, SizeExtent: 4})
			default:
				for _, s := range splitSentences(part.Text) {
					chunks = append(chunks, model.NewTextChunk(g.chunkID(), part.ID, s))
				}
			}
		}
	}
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.SplitAfter(text, ". ") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (g *generator) mutate(root *model.Element, opts genOptions) {
	for _, msg := range root.Children {
		for _, part := range msg.Children {
			if part.Type == "text" && g.rng.Float64() < opts.editRate {
				part.Text += " " + g.sentences(1)
			}
		}
		if g.rng.Float64() < opts.editRate/2 {
			msg.Attributes["edited"] = "true"
		}
	}

	if len(root.Children) > 2 && g.rng.Float64() < opts.editRate*2 {
		victim := root.Children[g.rng.IntN(len(root.Children))]
		root.RemoveChild(victim)
	}
	if g.rng.Float64() < opts.editRate*2 {
		msg := g.message(len(root.Children)+1000, opts.parts)
		at := g.rng.IntN(len(root.Children) + 1)
		root.Children = append(root.Children[:at], append([]*model.Element{msg}, root.Children[at:]...)...)
		msg.Parent = root
	}
	if n := len(root.Children); n > 3 {
		i := g.rng.IntN(n)
		moved := root.Children[i]
		root.Children = append(root.Children[:i], root.Children[i+1:]...)
		root.Children = append(root.Children, moved)
	}
}

func cloneElement(el *model.Element) *model.Element {
	c := *el
	c.Parent = nil
	if el.Attributes != nil {
		c.Attributes = make(map[string]string, len(el.Attributes))
		for k, v := range el.Attributes {
			c.Attributes[k] = v
		}
	}
	c.Children = nil
	for _, child := range el.Children {
		cc := cloneElement(child)
		cc.Parent = &c
		c.Children = append(c.Children, cc)
	}
	return &c
}
