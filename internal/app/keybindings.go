package app

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/chunkview/internal/ui"
)

// KeyBinding represents a key binding with its description and handler
type KeyBinding struct {
	Key         rune
	Description string
	Handler     func(*App)
}

// GetKey returns the key of this keybinding
func (kb *KeyBinding) GetKey() string {
	return string(kb.Key)
}

// GetDescription returns the description of this keybinding
func (kb *KeyBinding) GetDescription() string {
	return kb.Description
}

// PendingKeyBinding represents a pending key (like 'g' or 'z') that waits for a second key
type PendingKeyBinding struct {
	Prefix      rune
	Description string
	Sequences   map[rune]KeyBinding
}

// GetKey returns the prefix key
func (pkb *PendingKeyBinding) GetKey() string {
	return string(pkb.Prefix)
}

// GetDescription returns the description
func (pkb *PendingKeyBinding) GetDescription() string {
	return pkb.Description
}

// GetSequences returns a map of second key to description for display in help
func (pkb *PendingKeyBinding) GetSequences() map[rune]string {
	result := make(map[rune]string)
	for key, binding := range pkb.Sequences {
		result[key] = binding.Description
	}
	return result
}

type helpEntry struct {
	key         string
	description string
}

func (h helpEntry) GetKey() string         { return h.key }
func (h helpEntry) GetDescription() string { return h.description }

// InitializeKeybindings sets up all the key bindings
func (a *App) InitializeKeybindings() []KeyBinding {
	return []KeyBinding{
		{
			Key:         'j',
			Description: "Scroll down",
			Handler: func(app *App) {
				app.activePane().ScrollBy(1)
			},
		},
		{
			Key:         'k',
			Description: "Scroll up",
			Handler: func(app *App) {
				app.activePane().ScrollBy(-1)
			},
		},
		{
			Key:         'G',
			Description: "Scroll to bottom",
			Handler: func(app *App) {
				p := app.activePane()
				p.ScrollTo(p.ContentHeight())
			},
		},
		{
			Key:         'v',
			Description: "Mark start of fold range, press again to stage it",
			Handler: func(app *App) {
				app.toggleMark()
			},
		},
		{
			Key:         'o',
			Description: "Expand the fold at the top of the pane",
			Handler: func(app *App) {
				app.expandTop()
			},
		},
		{
			Key:         '/',
			Description: "Stage folds from a query",
			Handler: func(app *App) {
				app.query.Start()
			},
		},
		{
			Key:         ':',
			Description: "Enter command mode",
			Handler: func(app *App) {
				app.command.Start()
			},
		},
		{
			Key:         's',
			Description: "Toggle single pane",
			Handler: func(app *App) {
				app.single = !app.single
				app.resize()
			},
		},
		{
			Key:         'd',
			Description: "Show the diff against the before document",
			Handler: func(app *App) {
				app.showDiff()
			},
		},
		{
			Key:         '?',
			Description: "Toggle help",
			Handler: func(app *App) {
				app.help.Toggle()
			},
		},
		{
			Key:         'q',
			Description: "Quit",
			Handler: func(app *App) {
				app.Quit()
			},
		},
	}
}

// InitializePendingKeybindings sets up pending key bindings (keys that wait for a second key)
func (a *App) InitializePendingKeybindings() []PendingKeyBinding {
	return []PendingKeyBinding{
		{
			Prefix:      'g',
			Description: "Go to (g + key)",
			Sequences: map[rune]KeyBinding{
				'g': {
					Key:         'g',
					Description: "Scroll to top",
					Handler: func(app *App) {
						app.activePane().ScrollTo(0)
					},
				},
			},
		},
		{
			Prefix:      'z',
			Description: "Folding (z + key)",
			Sequences: map[rune]KeyBinding{
				'c': {
					Key:         'c',
					Description: "Collapse staged selections",
					Handler: func(app *App) {
						app.commitFolds()
					},
				},
				'o': {
					Key:         'o',
					Description: "Expand the fold at the top of the pane",
					Handler: func(app *App) {
						app.expandTop()
					},
				},
				'R': {
					Key:         'R',
					Description: "Expand all folds",
					Handler: func(app *App) {
						app.expandAll()
					},
				},
				'x': {
					Key:         'x',
					Description: "Clear staged selections",
					Handler: func(app *App) {
						if err := app.ctrl.ClearSelections(); err != nil {
							app.SetStatus(fmt.Sprintf("Error: %v", err))
							return
						}
						app.mark = ""
						app.SetStatus("Selections cleared")
					},
				},
			},
		},
	}
}

// GetKeybindingByKey returns a keybinding by its key
func (a *App) GetKeybindingByKey(key rune) *KeyBinding {
	for i := range a.keybindings {
		if a.keybindings[i].Key == key {
			return &a.keybindings[i]
		}
	}
	return nil
}

// GetPendingKeyBindingByPrefix returns a pending keybinding for a prefix key
func (a *App) GetPendingKeyBindingByPrefix(prefix rune) *PendingKeyBinding {
	for i := range a.pendingKeybindings {
		if a.pendingKeybindings[i].Prefix == prefix {
			return &a.pendingKeybindings[i]
		}
	}
	return nil
}

// IsPendingKeyPrefix checks if a key is a pending key prefix
func (a *App) IsPendingKeyPrefix(key rune) bool {
	return a.GetPendingKeyBindingByPrefix(key) != nil
}

// helpEntries lists single keys first, then every prefix sequence
func (a *App) helpEntries() []ui.KeyBindingInfo {
	entries := []ui.KeyBindingInfo{
		helpEntry{"↑/↓", "Scroll one row"},
		helpEntry{"PgUp/Dn", "Scroll one page"},
		helpEntry{"Tab", "Switch pane"},
	}
	for i := range a.keybindings {
		entries = append(entries, &a.keybindings[i])
	}
	for _, pkb := range a.pendingKeybindings {
		seqs := pkb.GetSequences()
		keys := make([]rune, 0, len(seqs))
		for k := range seqs {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			entries = append(entries, helpEntry{fmt.Sprintf("%c%c", pkb.Prefix, k), seqs[k]})
		}
	}
	return entries
}

// handleKeypress dispatches a key in normal mode
func (a *App) handleKeypress(ev *tcell.EventKey) {
	if a.debugMode {
		a.SetStatus(fmt.Sprintf("Key: %v | Rune: %q | Modifiers: %v", ev.Key(), ev.Rune(), ev.Modifiers()))
	}

	pane := a.activePane()
	page := pane.ViewportHeight()
	switch ev.Key() {
	case tcell.KeyDown:
		pane.ScrollBy(1)
		return
	case tcell.KeyUp:
		pane.ScrollBy(-1)
		return
	case tcell.KeyPgDn:
		pane.ScrollBy(page)
		return
	case tcell.KeyPgUp:
		pane.ScrollBy(-page)
		return
	case tcell.KeyCtrlD:
		pane.ScrollBy(page / 2)
		return
	case tcell.KeyCtrlU:
		pane.ScrollBy(-page / 2)
		return
	case tcell.KeyTab:
		if !a.single {
			a.active = (a.active + 1) % len(a.panes)
		}
		return
	case tcell.KeyEscape:
		a.pendingKey = 0
		a.mark = ""
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	if a.pendingKey != 0 {
		prefix := a.pendingKey
		a.pendingKey = 0
		if pkb := a.GetPendingKeyBindingByPrefix(prefix); pkb != nil {
			if kb, ok := pkb.Sequences[r]; ok {
				kb.Handler(a)
				return
			}
		}
		a.SetStatus(fmt.Sprintf("Unknown sequence: %c%c", prefix, r))
		return
	}
	if a.IsPendingKeyPrefix(r) {
		a.pendingKey = r
		return
	}
	if kb := a.GetKeybindingByKey(r); kb != nil {
		kb.Handler(a)
	}
}
