package diff

import (
	"fmt"
	"strings"
)

// DiffLineType indicates the type of diff line for rendering
type DiffLineType int

const (
	DiffTypeHeader DiffLineType = iota
	DiffTypeNewSection
	DiffTypeDeletedSection
	DiffTypeModifiedSection
	DiffTypeMovedSection
	DiffTypeNewItem
	DiffTypeDeletedItem
	DiffTypeModifiedItem
	DiffTypeMovedItem
	DiffTypeEqualItem
	DiffTypeItemDetail
	DiffTypeSummary
	DiffTypeBlank
)

// DiffLine represents a rendered line in diff output
type DiffLine struct {
	Type    DiffLineType
	Content string
	Indent  int // Indentation level
}

// BuildStructuralLines converts a structural diff into display lines, one
// section per status. This is suitable for both CLI and TUI output.
func BuildStructuralLines(d *StructuralDiff, verbose bool) []DiffLine {
	var inserted, deleted, modified, moved []*NodeDelta
	d.Root.Walk(func(node *NodeDelta, _ int) {
		switch node.Status {
		case StatusInserted:
			inserted = append(inserted, node)
		case StatusDeleted:
			deleted = append(deleted, node)
		case StatusModified:
			modified = append(modified, node)
		case StatusMoved:
			moved = append(moved, node)
		}
	})

	var lines []DiffLine
	section := func(kind DiffLineType, title string, nodes []*NodeDelta, format func(*NodeDelta) []DiffLine) {
		if len(nodes) == 0 {
			return
		}
		lines = append(lines, DiffLine{Type: kind, Content: title})
		lines = append(lines, DiffLine{Type: DiffTypeBlank})
		for _, node := range nodes {
			lines = append(lines, format(node)...)
		}
	}

	section(DiffTypeNewSection, "New Elements:", inserted, func(n *NodeDelta) []DiffLine {
		return formatNode(DiffTypeNewItem, n.AfterID, n, afterText(n), nil)
	})
	section(DiffTypeDeletedSection, "Deleted Elements:", deleted, func(n *NodeDelta) []DiffLine {
		return formatNode(DiffTypeDeletedItem, n.BeforeID, n, beforeText(n), nil)
	})
	section(DiffTypeModifiedSection, "Modified Elements:", modified, func(n *NodeDelta) []DiffLine {
		return formatNode(DiffTypeModifiedItem, n.AfterID, n, afterText(n), modifiedDetails(n, verbose))
	})
	section(DiffTypeMovedSection, "Moved Elements:", moved, func(n *NodeDelta) []DiffLine {
		details := []DiffLine{{
			Type:    DiffTypeItemDetail,
			Content: fmt.Sprintf("MOVED: %s → %s", formatPath(n.BeforePath), formatPath(n.AfterPath)),
			Indent:  2,
		}}
		return formatNode(DiffTypeMovedItem, n.AfterID, n, afterText(n), details)
	})

	if d.Root.SubtreeChanged {
		s := d.Stats
		lines = append(lines, DiffLine{Type: DiffTypeBlank})
		lines = append(lines, DiffLine{Type: DiffTypeSummary, Content: "=== Summary ==="})
		lines = append(lines, DiffLine{
			Type: DiffTypeSummary,
			Content: fmt.Sprintf("  %d modified, %d added, %d deleted, %d moved, %d equal",
				s.NodesModified, s.NodesAdded, s.NodesRemoved, s.NodesMoved, s.NodesEqual),
		})
		lines = append(lines, DiffLine{
			Type:    DiffTypeSummary,
			Content: fmt.Sprintf("  text +%d -%d, change density %.2f", s.TextAdded, s.TextRemoved, d.Metrics.ChangeDensity),
		})
	}

	return lines
}

// BuildRenderedLines converts a rendered diff into display lines in document
// order. Equal chunks are only listed in verbose mode.
func BuildRenderedLines(r *RenderedDiff, verbose bool) []DiffLine {
	var lines []DiffLine
	for _, op := range r.Operations {
		switch op.Op {
		case OpEqual:
			if verbose {
				lines = append(lines, DiffLine{
					Type:    DiffTypeEqualItem,
					Content: fmt.Sprintf("  %s [%s]: %s", op.After.ChunkID, op.After.ElementID, truncateText(op.After.Text, 60)),
				})
			}
		case OpInsert:
			lines = append(lines, DiffLine{
				Type:    DiffTypeNewItem,
				Content: fmt.Sprintf("+ %s [%s]: %s", op.After.ChunkID, op.After.ElementID, truncateText(op.After.Text, 60)),
			})
		case OpDelete:
			lines = append(lines, DiffLine{
				Type:    DiffTypeDeletedItem,
				Content: fmt.Sprintf("- %s [%s]: %s", op.Before.ChunkID, op.Before.ElementID, truncateText(op.Before.Text, 60)),
			})
		case OpReplace:
			lines = append(lines, DiffLine{
				Type:    DiffTypeModifiedItem,
				Content: fmt.Sprintf("~ %s → %s [%s]", op.Before.ChunkID, op.After.ChunkID, op.After.ElementID),
			})
			lines = append(lines, DiffLine{
				Type:    DiffTypeItemDetail,
				Content: fmt.Sprintf("TEXT: %s → %s", truncateText(op.Before.Text, 40), truncateText(op.After.Text, 40)),
				Indent:  1,
			})
		}
	}

	if !r.Stats.IsZero() {
		s := r.Stats
		lines = append(lines, DiffLine{Type: DiffTypeBlank})
		lines = append(lines, DiffLine{Type: DiffTypeSummary, Content: "=== Rendered Summary ==="})
		lines = append(lines, DiffLine{
			Type: DiffTypeSummary,
			Content: fmt.Sprintf("  %d replaced, %d inserted, %d deleted, text +%d -%d",
				s.Replaced, s.Inserted, s.Deleted, s.TextAdded, s.TextRemoved),
		})
		for _, id := range getSortedIDs(r.ElementSummaries) {
			sum := r.ElementSummaries[id]
			if len(sum.Operations) == 1 && sum.Operations[OpEqual] > 0 {
				continue
			}
			lines = append(lines, DiffLine{
				Type:    DiffTypeSummary,
				Content: fmt.Sprintf("  %s: %s (Δ%d)", id, formatOpCounts(sum.Operations), sum.TextDelta()),
			})
		}
	}
	return lines
}

func formatNode(kind DiffLineType, id string, n *NodeDelta, text string, details []DiffLine) []DiffLine {
	lines := []DiffLine{{
		Type:    kind,
		Content: fmt.Sprintf("%s <%s>: %s", id, n.ElementType, truncateText(text, 60)),
		Indent:  1,
	}}
	lines = append(lines, details...)
	return append(lines, DiffLine{Type: DiffTypeBlank})
}

func modifiedDetails(n *NodeDelta, verbose bool) []DiffLine {
	var lines []DiffLine
	if n.BeforeID != n.AfterID {
		lines = append(lines, DiffLine{
			Type:    DiffTypeItemDetail,
			Content: fmt.Sprintf("ID: %s → %s", n.BeforeID, n.AfterID),
			Indent:  2,
		})
	}
	if p, q := formatPath(n.BeforePath), formatPath(n.AfterPath); p != q {
		lines = append(lines, DiffLine{
			Type:    DiffTypeItemDetail,
			Content: fmt.Sprintf("MOVED: %s → %s", p, q),
			Indent:  2,
		})
	}
	if before, after := beforeText(n), afterText(n); before != after {
		lines = append(lines, DiffLine{
			Type:    DiffTypeItemDetail,
			Content: fmt.Sprintf("TEXT: %s → %s", truncateText(before, 40), truncateText(after, 40)),
			Indent:  2,
		})
		if verbose {
			for _, e := range n.TextEdits {
				if e.Op == OpEqual {
					continue
				}
				lines = append(lines, DiffLine{
					Type:    DiffTypeItemDetail,
					Content: fmt.Sprintf("%s: %q → %q", strings.ToUpper(string(e.Op)), e.Before, e.After),
					Indent:  3,
				})
			}
		}
	}
	for _, key := range getSortedIDs(n.AttrChanges) {
		change := n.AttrChanges[key]
		lines = append(lines, DiffLine{
			Type:    DiffTypeItemDetail,
			Content: fmt.Sprintf("ATTR changed: %s: %s → %s", key, change.Before, change.After),
			Indent:  2,
		})
	}
	return lines
}

func beforeText(n *NodeDelta) string {
	var b strings.Builder
	for _, e := range n.TextEdits {
		b.WriteString(e.Before)
	}
	return b.String()
}

func afterText(n *NodeDelta) string {
	var b strings.Builder
	for _, e := range n.TextEdits {
		b.WriteString(e.After)
	}
	return b.String()
}

func formatPath(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, "/")
}

func formatOpCounts(counts map[EditOp]int) string {
	var parts []string
	for _, op := range []EditOp{OpEqual, OpReplace, OpInsert, OpDelete} {
		if counts[op] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", op, counts[op]))
		}
	}
	return strings.Join(parts, " ")
}

// truncateText limits text length for display
func truncateText(text string, maxLen int) string {
	// Handle multi-line text
	lines := strings.Split(text, "\n")
	text = lines[0]
	if len(lines) > 1 {
		text += " ..."
	}

	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}
