package ui

import (
	"log"

	"github.com/pstuifzand/chunkview/internal/history"
)

// History keeps prompt entries for navigation with up and down
type History struct {
	entries        []string
	currentIndex   int // -1 when not navigating
	maxEntries     int
	temporaryInput string
	manager        *history.Manager
	filename       string
}

// NewHistory creates an in-memory History
func NewHistory(maxEntries int) *History {
	return &History{currentIndex: -1, maxEntries: maxEntries}
}

// NewHistoryWithManager creates a History backed by a persisted file
func NewHistoryWithManager(maxEntries int, manager *history.Manager, filename string) (*History, error) {
	h := NewHistory(maxEntries)
	h.manager = manager
	h.filename = filename

	entries, err := manager.Load(filename)
	if err != nil {
		return h, err
	}
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	h.entries = entries
	return h, nil
}

// Add appends entry unless it is empty or repeats the latest entry
func (h *History) Add(entry string) {
	if entry == "" || (len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry) {
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[len(h.entries)-h.maxEntries:]
	}
	h.Reset()

	if h.manager != nil {
		if err := h.manager.Save(h.filename, h.entries); err != nil {
			log.Printf("failed to save history %s: %v", h.filename, err)
		}
	}
}

// Previous moves to the older entry
func (h *History) Previous() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.currentIndex < 0 {
		h.currentIndex = len(h.entries) - 1
	} else if h.currentIndex > 0 {
		h.currentIndex--
	}
	return h.entries[h.currentIndex], true
}

// Next moves to the newer entry. Moving past the newest restores the input
// stored with SetTemporary.
func (h *History) Next() (string, bool) {
	if h.currentIndex < 0 {
		return "", false
	}
	h.currentIndex++
	if h.currentIndex >= len(h.entries) {
		temp := h.temporaryInput
		h.Reset()
		return temp, true
	}
	return h.entries[h.currentIndex], true
}

// Reset leaves history navigation
func (h *History) Reset() {
	h.currentIndex = -1
	h.temporaryInput = ""
}

// SetTemporary stores the input being typed before navigation starts
func (h *History) SetTemporary(input string) {
	h.temporaryInput = input
}

// IsNavigating returns true while walking through entries
func (h *History) IsNavigating() bool {
	return h.currentIndex >= 0
}

// Len returns the number of entries
func (h *History) Len() int {
	return len(h.entries)
}
