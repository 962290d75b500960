// Package history persists prompt input history as TOML files
package history

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manager loads and saves history files inside one directory
type Manager struct {
	historyDir string
}

// File is the on-disk shape of one history file
type File struct {
	Entries []string `toml:"entries"`
}

// NewManager creates a manager for ~/.local/share/chunkview/history/
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(homeDir, ".local", "share", "chunkview", "history"))
}

// NewManagerAt creates a manager for dir, creating it when missing
func NewManagerAt(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Manager{historyDir: dir}, nil
}

// Load returns the entries of filename. A missing or corrupted file yields
// no entries.
func (m *Manager) Load(filename string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(m.historyDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		log.Printf("ignoring corrupted history file %s: %v", filename, err)
		return []string{}, nil
	}
	return f.Entries, nil
}

// Save writes entries to filename
func (m *Manager) Save(filename string, entries []string) error {
	data, err := toml.Marshal(File{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.historyDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
