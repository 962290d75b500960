package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/diff"
)

func TestGeneratePairIsValid(t *testing.T) {
	before, after := generatePair(genOptions{messages: 12, parts: 3, editRate: 0.5, seed: 7})

	require.NoError(t, before.Validate())
	require.NoError(t, after.Validate())
	assert.Len(t, before.Root.Children, 12)
	assert.NotEmpty(t, before.Chunks)
	for _, msg := range after.Root.Children {
		assert.Same(t, after.Root, msg.Parent)
	}
}

func TestGeneratePairIsDeterministic(t *testing.T) {
	opts := genOptions{messages: 8, parts: 2, editRate: 0.3, seed: 42}
	b1, a1 := generatePair(opts)
	b2, a2 := generatePair(opts)

	assert.Equal(t, b1.ChunkIDs(), b2.ChunkIDs())
	assert.Equal(t, a1.ChunkIDs(), a2.ChunkIDs())
}

func TestGeneratedPairDiffs(t *testing.T) {
	before, after := generatePair(genOptions{messages: 10, parts: 3, editRate: 0.5, seed: 3})

	cfg, err := config.LoadFromFile(t.TempDir() + "/missing.toml")
	require.NoError(t, err)
	report := diff.DiffDocuments(before, after, cfg.DiffOptions())
	assert.True(t, report.HasChanges())
}

func TestCloneElementIsDeep(t *testing.T) {
	before, _ := generatePair(genOptions{messages: 2, parts: 1, editRate: 0, seed: 1})
	clone := cloneElement(before.Root)

	clone.Children[0].Attributes["role"] = "changed"
	assert.NotEqual(t, "changed", before.Root.Children[0].Attributes["role"])
	assert.Same(t, clone, clone.Children[0].Parent)
}
