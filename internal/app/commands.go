package app

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/pstuifzand/chunkview/internal/diff"
	"github.com/pstuifzand/chunkview/internal/export"
	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/search"
	"github.com/pstuifzand/chunkview/internal/socket"
	"github.com/pstuifzand/chunkview/internal/ui"
)

var commandHelp = []string{
	":fold <query>    - stage every matching run, see / for the query syntax",
	":collapse        - collapse staged selections",
	":clear           - clear staged selections",
	":expand <id...>  - expand groups by group or chunk id",
	":expandall       - expand every group",
	":diff            - show the diff overlay",
	":export <file>   - write the folded view as markdown",
	":set <key> <val> - override a setting for this session (diff.granularity, diff.verbose)",
	":get <key>       - show a setting",
	":debug           - toggle debug status line",
	":q               - quit",
}

// parseCommand splits a command line into words. Single and double quotes
// group words; a backslash escapes the next character.
func parseCommand(cmd string) []string {
	var parts []string
	var current strings.Builder
	var quote rune
	inWord := false
	escaped := false

	for _, r := range cmd {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				parts = append(parts, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		parts = append(parts, current.String())
	}
	return parts
}

// handleCommand processes a command from command mode
func (a *App) handleCommand(cmd string) {
	parts := parseCommand(cmd)
	if len(parts) == 0 {
		return
	}
	args := parts[1:]

	switch parts[0] {
	case "q", "quit", "q!":
		a.Quit()
	case "fold":
		if len(args) == 0 {
			a.SetStatus("Usage: :fold <query>")
			return
		}
		a.StageQuery(strings.Join(args, " "))
	case "collapse":
		a.commitFolds()
	case "clear":
		if err := a.ctrl.ClearSelections(); err != nil {
			a.SetStatus(fmt.Sprintf("Error: %v", err))
			return
		}
		a.mark = ""
		a.SetStatus("Selections cleared")
	case "expand":
		if len(args) == 0 {
			a.expandTop()
			return
		}
		if err := a.ctrl.ExpandByChunkIDs(args); err != nil {
			a.SetStatus("Failed to expand: " + err.Error())
			return
		}
		a.SetStatus(fmt.Sprintf("Expanded %s", strings.Join(args, ", ")))
	case "expandall":
		a.expandAll()
	case "diff":
		a.showDiff()
	case "export":
		if len(args) != 1 {
			a.SetStatus("Usage: :export <file.md>")
			return
		}
		if err := export.ExportToMarkdown(a.doc, a.ctrl, args[0]); err != nil {
			a.SetStatus("Failed to export: " + err.Error())
			return
		}
		a.SetStatus("Exported to " + args[0])
	case "set":
		if len(args) != 2 {
			a.SetStatus("Usage: :set <key> <value>")
			return
		}
		a.cfg.Set(args[0], args[1])
		if strings.HasPrefix(args[0], "diff.") {
			a.rediff()
		}
		a.SetStatus(fmt.Sprintf("%s = %s", args[0], args[1]))
	case "get":
		if len(args) != 1 {
			a.SetStatus("Usage: :get <key>")
			return
		}
		a.SetStatus(fmt.Sprintf("%s = %q", args[0], a.cfg.Get(args[0])))
	case "help":
		a.help.Toggle()
	case "debug":
		a.debugMode = !a.debugMode
		if a.debugMode {
			a.SetStatus("Debug mode ON")
		} else {
			a.SetStatus("Debug mode OFF")
		}
	default:
		a.SetStatus("Unknown command: " + parts[0])
	}
}

// StageQuery stages every run of visible chunks matching query
func (a *App) StageQuery(query string) {
	runs, err := search.Stage(a.ctrl, a.doc, query)
	switch {
	case errors.Is(err, folding.ErrSelectionConflict):
		a.SetStatus("Query overlaps a staged selection")
	case err != nil:
		a.SetStatus(err.Error())
	case len(runs) == 0:
		a.SetStatus("No chunks match " + query)
	default:
		a.SetStatus(fmt.Sprintf("Staged %d runs, zc to collapse", len(runs)))
	}
}

// toggleMark remembers the top entry, or stages everything between the mark
// and the current top entry
func (a *App) toggleMark() {
	top := a.activePane().TopEntry()
	if top == "" {
		return
	}
	if a.mark == "" {
		a.mark = top
		a.SetStatus("Mark set at " + top)
		return
	}

	visible := a.ctrl.VisibleSequence()
	from := slices.Index(visible, a.mark)
	to := slices.Index(visible, top)
	a.mark = ""
	if from < 0 || to < 0 {
		a.SetStatus("Mark is no longer visible")
		return
	}
	if from > to {
		from, to = to, from
	}
	if err := a.ctrl.AddSelection(from, to+1); err != nil {
		a.SetStatus("Failed to stage: " + err.Error())
		return
	}
	a.SetStatus(fmt.Sprintf("Staged %d entries, zc to collapse", to-from+1))
}

func (a *App) commitFolds() {
	groups, err := a.ctrl.CommitSelections()
	if err != nil {
		a.SetStatus("Failed to collapse: " + err.Error())
		return
	}
	a.mark = ""
	a.SetStatus(fmt.Sprintf("Collapsed %d groups", len(groups)))
}

func (a *App) expandTop() {
	top := a.activePane().TopEntry()
	if !a.ctrl.IsCollapsed(top) {
		a.SetStatus("No fold at the top of the pane")
		return
	}
	if err := a.ctrl.ExpandChunk(top); err != nil {
		a.SetStatus("Failed to expand: " + err.Error())
		return
	}
	a.SetStatus("Expanded " + top)
}

func (a *App) expandAll() {
	if err := a.ctrl.ExpandAll(); err != nil {
		a.SetStatus("Failed to expand: " + err.Error())
		return
	}
	a.mark = ""
	a.SetStatus("Expanded all folds")
}

func (a *App) showDiff() {
	if a.report == nil {
		a.SetStatus("No before document, start with -before")
		return
	}
	a.diffView.Show(a.report, a.beforePath, a.docPath, a.cfg.Get("diff.verbose") == "true")
	log.Printf("diff: churn %.2f", a.report.ChunkChurn)
}

// rediff recomputes the report after a diff setting changed
func (a *App) rediff() {
	if a.before == nil {
		return
	}
	a.report = diff.DiffDocuments(a.before, a.doc, a.cfg.DiffOptions())
	for _, p := range a.panes {
		p.SetHighlights(ui.ChunkHighlights(a.report.Rendered, a.screen.Theme))
	}
}

// handleRemote processes a message from the socket server
func (a *App) handleRemote(msg socket.Message) {
	switch msg.Command {
	case socket.CommandRun:
		log.Printf("remote: %s", msg.Text)
		a.handleCommand(msg.Text)
	case socket.CommandState:
		groups := make(map[string][]string)
		for _, g := range a.ctrl.CollapsedGroups() {
			groups[g.ID] = g.Children
		}
		msg.ResponseChan <- &socket.Response{
			Success: true,
			Message: a.statusMsg,
			Visible: a.ctrl.VisibleSequence(),
			Groups:  groups,
		}
	}
}
