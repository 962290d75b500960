package diff

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/pstuifzand/chunkview/internal/model"
)

// DiffChunks aligns two rendered chunk sequences. Chunks match when they
// belong to the same element and carry the same text; non-text chunks
// match on the element alone. A text change inside one element is always
// reported as a single replace.
func DiffChunks(before, after []model.Chunk) *RenderedDiff {
	beforeKeys := chunkKeys(before)
	afterKeys := chunkKeys(after)

	var ops []ChunkDelta
	matcher := difflib.NewMatcherWithJunk(beforeKeys, afterKeys, false, nil)
	for _, oc := range matcher.GetOpCodes() {
		switch oc.Tag {
		case 'e':
			for k := 0; k < oc.I2-oc.I1; k++ {
				ops = append(ops, equalChunk(before[oc.I1+k], after[oc.J1+k]))
			}
		case 'd':
			ops = appendDeletes(ops, before[oc.I1:oc.I2])
		case 'i':
			ops = appendInserts(ops, after[oc.J1:oc.J2])
		case 'r':
			ops = append(ops, pairByElement(before[oc.I1:oc.I2], after[oc.J1:oc.J2])...)
		}
	}

	return &RenderedDiff{
		Operations:       ops,
		Stats:            renderStats(ops),
		ElementSummaries: summarizeElements(ops),
	}
}

// pairByElement realigns a replaced block on owning element IDs so that
// chunks of the same element become replace operations
func pairByElement(before, after []model.Chunk) []ChunkDelta {
	beforeIDs := make([]string, len(before))
	for i, c := range before {
		beforeIDs[i] = c.ElementID
	}
	afterIDs := make([]string, len(after))
	for i, c := range after {
		afterIDs[i] = c.ElementID
	}

	var ops []ChunkDelta
	matcher := difflib.NewMatcherWithJunk(beforeIDs, afterIDs, false, nil)
	for _, oc := range matcher.GetOpCodes() {
		switch oc.Tag {
		case 'e':
			for k := 0; k < oc.I2-oc.I1; k++ {
				b, a := before[oc.I1+k], after[oc.J1+k]
				if chunkKey(b) == chunkKey(a) {
					ops = append(ops, equalChunk(b, a))
					continue
				}
				ops = append(ops, ChunkDelta{
					Op:        OpReplace,
					Before:    chunkRef(b),
					After:     chunkRef(a),
					TextEdits: DiffText(b.Text, a.Text, GranularityChar),
				})
			}
		case 'd':
			ops = appendDeletes(ops, before[oc.I1:oc.I2])
		case 'i':
			ops = appendInserts(ops, after[oc.J1:oc.J2])
		case 'r':
			ops = appendDeletes(ops, before[oc.I1:oc.I2])
			ops = appendInserts(ops, after[oc.J1:oc.J2])
		}
	}
	return ops
}

func equalChunk(b, a model.Chunk) ChunkDelta {
	return ChunkDelta{Op: OpEqual, Before: chunkRef(b), After: chunkRef(a)}
}

func appendDeletes(ops []ChunkDelta, chunks []model.Chunk) []ChunkDelta {
	for _, c := range chunks {
		ops = append(ops, ChunkDelta{Op: OpDelete, Before: chunkRef(c)})
	}
	return ops
}

func appendInserts(ops []ChunkDelta, chunks []model.Chunk) []ChunkDelta {
	for _, c := range chunks {
		ops = append(ops, ChunkDelta{Op: OpInsert, After: chunkRef(c)})
	}
	return ops
}

func chunkRef(c model.Chunk) *ChunkRef {
	return &ChunkRef{ChunkID: c.ID, ElementID: c.ElementID, Kind: c.Kind, Text: c.Text}
}

func chunkKeys(chunks []model.Chunk) []string {
	keys := make([]string, len(chunks))
	for i, c := range chunks {
		keys[i] = chunkKey(c)
	}
	return keys
}

func chunkKey(c model.Chunk) string {
	if !c.HasTextPayload() {
		return c.ElementID + "\x00n"
	}
	return c.ElementID + "\x00t\x00" + c.Text
}

// summarizeElements groups operations by owning element
func summarizeElements(ops []ChunkDelta) map[string]*ElementSummary {
	summaries := make(map[string]*ElementSummary)
	for _, op := range ops {
		id := op.ElementID()
		s, ok := summaries[id]
		if !ok {
			s = &ElementSummary{ElementID: id, Operations: make(map[EditOp]int)}
			summaries[id] = s
		}
		s.Operations[op.Op]++
		if op.Before != nil {
			s.BeforeText += op.Before.Text
		}
		if op.After != nil {
			s.AfterText += op.After.Text
		}
	}
	return summaries
}
