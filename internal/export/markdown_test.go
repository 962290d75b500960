package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/model"
)

func testDocument() *model.Document {
	root := &model.Element{ID: "root", Type: "prompt"}
	msg := &model.Element{ID: "m1", Type: "message", Key: "greeting"}
	msg.AddChild(&model.Element{ID: "e1", Type: "text"})
	root.AddChild(msg)
	root.AddChild(&model.Element{ID: "e2", Type: "param"})
	return model.NewDocument(root,
		model.NewTextChunk("c1", "e1", "Hello\nworld"),
		model.NewTextChunk("c2", "e1", "second"),
		model.Chunk{ID: "c3", ElementID: "e2", Kind: model.ChunkImage},
		model.NewTextChunk("c4", "e2", "tail"),
	)
}

func TestRenderMarkdown(t *testing.T) {
	doc := testDocument()
	ctrl, err := folding.NewFromDocument(doc)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}

	got := RenderMarkdown(doc, ctrl)
	expected := "  - **e1** (text)\n" +
		"    - Hello world\n" +
		"    - second\n" +
		"- **e2** (param)\n" +
		"  - [image c3]\n" +
		"  - tail\n"
	if got != expected {
		t.Errorf("Unexpected markdown.\nExpected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestRenderMarkdownWithFolds(t *testing.T) {
	doc := testDocument()
	ctrl, err := folding.NewFromDocument(doc)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	if err := ctrl.AddSelection(1, 3); err != nil {
		t.Fatalf("Failed to stage: %v", err)
	}
	if _, err := ctrl.CommitSelections(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	got := RenderMarkdown(doc, ctrl)
	expected := "  - **e1** (text)\n" +
		"    - Hello world\n" +
		"    - … 2 chunks folded\n" +
		"- **e2** (param)\n" +
		"  - tail\n"
	if got != expected {
		t.Errorf("Unexpected markdown.\nExpected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestExportToMarkdown(t *testing.T) {
	doc := testDocument()
	ctrl, err := folding.NewFromDocument(doc)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}

	outputFile := filepath.Join(t.TempDir(), "out.md")
	if err := ExportToMarkdown(doc, ctrl, outputFile); err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}
	content, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if string(content) != RenderMarkdown(doc, ctrl) {
		t.Errorf("File content differs from RenderMarkdown")
	}

	if err := ExportToMarkdown(doc, ctrl, filepath.Join(t.TempDir(), "missing", "out.md")); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
