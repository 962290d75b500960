// Package diff compares two versions of a chunked document, both as element
// trees (structural diff) and as flat rendered chunk sequences (rendered
// diff).
package diff

import (
	"github.com/pstuifzand/chunkview/internal/model"
)

// Report bundles both views of a document comparison
type Report struct {
	Structural *StructuralDiff
	Rendered   *RenderedDiff
	// ChunkChurn is the share of chunk operations that are not equal
	ChunkChurn float64
}

// DiffDocuments runs the structural and the rendered diff over two documents
func DiffDocuments(before, after *model.Document, opts Options) *Report {
	var beforeChunks, afterChunks []model.Chunk
	if before != nil {
		beforeChunks = before.Chunks
	}
	if after != nil {
		afterChunks = after.Chunks
	}

	report := &Report{
		Structural: DiffStructure(before, after, opts),
		Rendered:   DiffChunks(beforeChunks, afterChunks),
	}
	if n := len(report.Rendered.Operations); n > 0 {
		s := report.Rendered.Stats
		report.ChunkChurn = float64(s.Inserted+s.Deleted+s.Replaced) / float64(n)
	}
	return report
}

// HasChanges reports whether either diff found a difference
func (r *Report) HasChanges() bool {
	return r.Structural.Root.SubtreeChanged || !r.Rendered.Stats.IsZero()
}
