package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/model"
)

func TestDiffChunksAgainstItself(t *testing.T) {
	chunks := []model.Chunk{
		model.NewTextChunk("c1", "e1", "Hello"),
		model.NewTextChunk("c2", "e2", "World"),
		{ID: "c3", ElementID: "e3", Kind: model.ChunkImage},
	}

	result := DiffChunks(chunks, chunks)

	require.Len(t, result.Operations, 3)
	for _, op := range result.Operations {
		assert.Equal(t, OpEqual, op.Op)
		assert.NotNil(t, op.Before)
		assert.NotNil(t, op.After)
	}
	assert.True(t, result.Stats.IsZero())
}

func TestDiffChunksHelloWorld(t *testing.T) {
	before := []model.Chunk{model.NewTextChunk("c1", "e1", "Hello")}
	after := []model.Chunk{model.NewTextChunk("c7", "e1", "Hello world")}

	result := DiffChunks(before, after)

	require.Len(t, result.Operations, 1)
	op := result.Operations[0]
	assert.Equal(t, OpReplace, op.Op)
	assert.Equal(t, &ChunkRef{ChunkID: "c1", ElementID: "e1", Kind: model.ChunkText, Text: "Hello"}, op.Before)
	assert.Equal(t, &ChunkRef{ChunkID: "c7", ElementID: "e1", Kind: model.ChunkText, Text: "Hello world"}, op.After)
	assert.Equal(t, []TextEdit{
		{Op: OpEqual, Before: "Hello", After: "Hello"},
		{Op: OpInsert, Before: "", After: " world"},
	}, op.TextEdits)
	assert.Equal(t, RenderStats{Replaced: 1, TextAdded: 6}, result.Stats)

	summary := result.ElementSummaries["e1"]
	require.NotNil(t, summary)
	assert.Equal(t, map[EditOp]int{OpReplace: 1}, summary.Operations)
	assert.Equal(t, 6, summary.TextDelta())
}

func TestDiffChunksReplaceNotSplit(t *testing.T) {
	before := []model.Chunk{
		model.NewTextChunk("a", "e1", "intro"),
		model.NewTextChunk("b", "e2", "old body"),
		model.NewTextChunk("c", "e3", "outro"),
	}
	after := []model.Chunk{
		model.NewTextChunk("a2", "e1", "intro"),
		model.NewTextChunk("b2", "e2", "new body"),
		model.NewTextChunk("c2", "e3", "outro"),
	}

	result := DiffChunks(before, after)

	var ops []EditOp
	for _, op := range result.Operations {
		ops = append(ops, op.Op)
	}
	assert.Equal(t, []EditOp{OpEqual, OpReplace, OpEqual}, ops)
	assert.Equal(t, "b", result.Operations[1].Before.ChunkID)
	assert.Equal(t, "b2", result.Operations[1].After.ChunkID)
}

func TestDiffChunksMixedBlock(t *testing.T) {
	before := []model.Chunk{
		model.NewTextChunk("a", "e1", "one"),
		model.NewTextChunk("b", "e2", "two"),
	}
	after := []model.Chunk{
		model.NewTextChunk("a2", "e1", "ONE"),
		model.NewTextChunk("x", "e9", "extra"),
	}

	result := DiffChunks(before, after)

	require.Len(t, result.Operations, 3)
	assert.Equal(t, OpReplace, result.Operations[0].Op)
	assert.Equal(t, "e1", result.Operations[0].ElementID())
	assert.Equal(t, OpDelete, result.Operations[1].Op)
	assert.Nil(t, result.Operations[1].After)
	assert.Equal(t, OpInsert, result.Operations[2].Op)
	assert.Nil(t, result.Operations[2].Before)
}

func TestDiffChunksNoOverlap(t *testing.T) {
	before := []model.Chunk{
		model.NewTextChunk("a", "e1", "a"),
		model.NewTextChunk("b", "e2", "b"),
	}
	after := []model.Chunk{
		model.NewTextChunk("c", "e3", "c"),
		model.NewTextChunk("d", "e4", "d"),
	}

	result := DiffChunks(before, after)

	var ops []EditOp
	for _, op := range result.Operations {
		ops = append(ops, op.Op)
	}
	assert.Equal(t, []EditOp{OpDelete, OpDelete, OpInsert, OpInsert}, ops)
	assert.Equal(t, RenderStats{Inserted: 2, Deleted: 2, TextAdded: 2, TextRemoved: 2}, result.Stats)
}

func TestDiffChunksNonTextMatchesOnElement(t *testing.T) {
	before := []model.Chunk{{ID: "img1", ElementID: "pic", Kind: model.ChunkImage, Text: "ignored"}}
	after := []model.Chunk{{ID: "img2", ElementID: "pic", Kind: model.ChunkImage}}

	result := DiffChunks(before, after)

	require.Len(t, result.Operations, 1)
	assert.Equal(t, OpEqual, result.Operations[0].Op)
}

func TestDiffChunksEmpty(t *testing.T) {
	assert.Empty(t, DiffChunks(nil, nil).Operations)

	result := DiffChunks(nil, []model.Chunk{model.NewTextChunk("a", "e1", "new")})
	require.Len(t, result.Operations, 1)
	assert.Equal(t, OpInsert, result.Operations[0].Op)
}

func TestDiffDocuments(t *testing.T) {
	before := model.NewDocument(el("root", "prompt", "", "", el("e1", "static", "", "Hello")),
		model.NewTextChunk("c1", "e1", "Hello"))
	after := model.NewDocument(el("root", "prompt", "", "", el("e1", "static", "", "Hello world")),
		model.NewTextChunk("c2", "e1", "Hello world"))

	report := DiffDocuments(before, after, DefaultOptions())

	assert.True(t, report.HasChanges())
	assert.Equal(t, StatusModified, report.Structural.Get("e1").Status)
	assert.Equal(t, 1, report.Rendered.Stats.Replaced)
	assert.Equal(t, 1.0, report.ChunkChurn)

	same := DiffDocuments(before, before, DefaultOptions())
	assert.False(t, same.HasChanges())
	assert.Zero(t, same.ChunkChurn)
}
