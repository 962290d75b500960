package diff

import (
	"unicode/utf8"

	"github.com/pstuifzand/chunkview/internal/model"
)

func summarize(root *NodeDelta) Stats {
	var s Stats
	root.Walk(func(node *NodeDelta, _ int) {
		s.TotalNodes++
		switch node.Status {
		case StatusEqual:
			s.NodesEqual++
		case StatusInserted:
			s.NodesAdded++
		case StatusDeleted:
			s.NodesRemoved++
		case StatusModified:
			s.NodesModified++
		case StatusMoved:
			s.NodesMoved++
		}
		added, removed := editSizes(node.TextEdits)
		s.TextAdded += added
		s.TextRemoved += removed
	})
	return s
}

func structuralMetrics(s Stats, before, after *model.Element) Metrics {
	var m Metrics
	if s.TotalNodes > 0 {
		m.ChangeDensity = float64(s.TotalNodes-s.NodesEqual) / float64(s.TotalNodes)
	}

	beforeNodes, beforeText := treeSize(before)
	afterNodes, afterText := treeSize(after)
	if total := beforeText + afterText; total > 0 {
		m.TextChurn = float64(s.TextAdded+s.TextRemoved) / float64(total)
	}
	switch {
	case beforeNodes > 0:
		m.Growth = float64(afterNodes-beforeNodes) / float64(beforeNodes)
	case afterNodes > 0:
		m.Growth = 1
	}
	return m
}

func treeSize(root *model.Element) (nodes, text int) {
	if root == nil {
		return 0, 0
	}
	doc := &model.Document{Root: root}
	for _, el := range doc.AllElements() {
		nodes++
		text += utf8.RuneCountInString(el.Text)
	}
	return nodes, text
}

func renderStats(ops []ChunkDelta) RenderStats {
	var s RenderStats
	for _, op := range ops {
		switch op.Op {
		case OpInsert:
			s.Inserted++
			s.TextAdded += utf8.RuneCountInString(op.After.Text)
		case OpDelete:
			s.Deleted++
			s.TextRemoved += utf8.RuneCountInString(op.Before.Text)
		case OpReplace:
			s.Replaced++
			added, removed := editSizes(op.TextEdits)
			s.TextAdded += added
			s.TextRemoved += removed
		}
	}
	return s
}
