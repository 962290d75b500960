package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pstuifzand/chunkview/internal/model"
)

// JSONStore handles JSON document files
type JSONStore struct {
	FilePath string
}

// NewJSONStore creates a new JSON store for the given file path
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{
		FilePath: filePath,
	}
}

// Load loads and validates a document from a JSON file
func (s *JSONStore) Load() (*model.Document, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.FilePath, err)
	}
	return doc, nil
}

// Decode parses a JSON document, restores parent pointers and validates it
func Decode(data []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", model.ErrMalformedTree)
	}

	doc.RestoreParents()
	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		if c.Kind == "" {
			c.Kind = model.ChunkText
		}
		if c.SizeUnits == 0 && c.HasTextPayload() {
			c.SizeUnits = len([]rune(c.Text))
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save saves a document to a JSON file
func (s *JSONStore) Save(doc *model.Document) error {
	dir := filepath.Dir(s.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(s.FilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// FileExists checks if the document file exists
func (s *JSONStore) FileExists() bool {
	_, err := os.Stat(s.FilePath)
	return err == nil
}
