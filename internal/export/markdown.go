// Package export writes the folded view of a document to other formats
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/model"
)

// FoldState is the part of the folding controller the exporter reads
type FoldState interface {
	VisibleSequence() []string
	CollapsedChunk(id string) *folding.CollapsedGroup
}

// ExportToMarkdown writes the visible sequence of doc as markdown bullets.
// Each run of chunks is listed under its owning element, indented by
// element depth; collapsed groups become a single placeholder bullet.
func ExportToMarkdown(doc *model.Document, state FoldState, filePath string) error {
	content := RenderMarkdown(doc, state)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	return nil
}

// RenderMarkdown returns what ExportToMarkdown writes
func RenderMarkdown(doc *model.Document, state FoldState) string {
	var sb strings.Builder
	chunks := doc.ChunkMap()

	current := ""
	depth := 0
	for _, id := range state.VisibleSequence() {
		var line, elementID string
		if g := state.CollapsedChunk(id); g != nil {
			if len(g.Children) == 0 {
				continue
			}
			elementID = chunks[g.Children[0]].ElementID
			line = fmt.Sprintf("… %d chunks folded", len(g.Children))
		} else {
			c, ok := chunks[id]
			if !ok {
				continue
			}
			elementID = c.ElementID
			line = chunkText(c)
		}

		if elementID != current {
			current = elementID
			el := doc.FindElementByID(elementID)
			depth = elementDepth(el)
			writeBullet(&sb, depth, elementLabel(el, elementID))
		}
		writeBullet(&sb, depth+1, line)
	}
	return sb.String()
}

func writeBullet(sb *strings.Builder, depth int, text string) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	sb.WriteString(text)
	sb.WriteString("\n")
}

func chunkText(c model.Chunk) string {
	if !c.HasTextPayload() {
		return fmt.Sprintf("[%s %s]", c.Kind, c.ID)
	}
	text := strings.Join(strings.Fields(c.Text), " ")
	if text == "" {
		return "(empty)"
	}
	return text
}

func elementLabel(el *model.Element, id string) string {
	if el == nil {
		return "**" + id + "**"
	}
	label := fmt.Sprintf("**%s** (%s)", el.ID, el.Type)
	if el.Key != "" {
		label += " `" + el.Key + "`"
	}
	return label
}

// elementDepth counts ancestors below the root
func elementDepth(el *model.Element) int {
	depth := 0
	for el != nil && el.Parent != nil && depth < model.MaxDepth {
		el = el.Parent
		depth++
	}
	return max(depth-1, 0)
}
