package diff

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/model"
)

func sampleReport() *Report {
	before := model.NewDocument(el("root", "prompt", "", "",
		el("e1", "static", "greeting", "Hello"),
		el("e2", "static", "target", "World"),
	), model.NewTextChunk("c1", "e1", "Hello"), model.NewTextChunk("c2", "e2", "World"))
	after := model.NewDocument(el("root", "prompt", "", "",
		el("e1", "static", "greeting", "Hello there"),
		el("e3", "static", "extra", "Again"),
	), model.NewTextChunk("c3", "e1", "Hello there"), model.NewTextChunk("c4", "e3", "Again"))
	return DiffDocuments(before, after, DefaultOptions())
}

func contents(lines []DiffLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Content)
	}
	return out
}

func TestBuildStructuralLines(t *testing.T) {
	lines := BuildStructuralLines(sampleReport().Structural, true)
	text := strings.Join(contents(lines), "\n")

	assert.Contains(t, text, "New Elements:")
	assert.Contains(t, text, "e3 <static>: Again")
	assert.Contains(t, text, "Deleted Elements:")
	assert.Contains(t, text, "e2 <static>: World")
	assert.Contains(t, text, "Modified Elements:")
	assert.Contains(t, text, "TEXT: Hello → Hello there")
	assert.Contains(t, text, `INSERT: "" → " there"`)
	assert.Contains(t, text, "1 modified, 1 added, 1 deleted, 0 moved, 1 equal")
	assert.NotContains(t, text, "Moved Elements:")
}

func TestBuildStructuralLinesUnchanged(t *testing.T) {
	doc := model.NewDocument(el("root", "prompt", "", "", el("e1", "static", "", "same")))
	assert.Empty(t, BuildStructuralLines(DiffStructure(doc, doc, DefaultOptions()), false))
}

func TestBuildRenderedLines(t *testing.T) {
	lines := BuildRenderedLines(sampleReport().Rendered, false)
	require.NotEmpty(t, lines)

	assert.Equal(t, DiffTypeModifiedItem, lines[0].Type)
	assert.Equal(t, "~ c1 → c3 [e1]", lines[0].Content)
	assert.Equal(t, "TEXT: Hello → Hello there", lines[1].Content)

	text := strings.Join(contents(lines), "\n")
	assert.Contains(t, text, "- c2 [e2]: World")
	assert.Contains(t, text, "+ c4 [e3]: Again")
	assert.Contains(t, text, "e1: replace=1 (Δ6)")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "first ...", truncateText("first\nsecond", 20))
	assert.Equal(t, "ééé...", truncateText("éééé", 3))
}

func TestStructuralWidgetData(t *testing.T) {
	data, err := json.Marshal(sampleReport().Structural.WidgetData())
	require.NoError(t, err)

	var decoded struct {
		Root struct {
			BeforeID *string `json:"before_id"`
			Children []struct {
				Status   NodeStatus `json:"status"`
				BeforeID *string    `json:"before_id"`
				AfterID  *string    `json:"after_id"`
			} `json:"children"`
		} `json:"root"`
		Stats Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.NotNil(t, decoded.Root.BeforeID)
	assert.Equal(t, "root", *decoded.Root.BeforeID)
	require.Len(t, decoded.Root.Children, 3)
	deleted := decoded.Root.Children[2]
	assert.Equal(t, StatusDeleted, deleted.Status)
	assert.Nil(t, deleted.AfterID)
	assert.Equal(t, 1, decoded.Stats.NodesRemoved)
}

func TestRenderedWidgetData(t *testing.T) {
	w := sampleReport().Rendered.WidgetData()

	require.Len(t, w.Chunks, 3)
	assert.Equal(t, OpReplace, w.Chunks[0].Op)
	require.Len(t, w.ElementSummaries, 3)
	assert.Equal(t, "e1", w.ElementSummaries[0].ElementID)
	assert.Equal(t, "e3", w.ElementSummaries[2].ElementID)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"before":null`)
}
