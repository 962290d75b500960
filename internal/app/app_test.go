package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/model"
	"github.com/pstuifzand/chunkview/internal/scrollsync"
	"github.com/pstuifzand/chunkview/internal/socket"
	"github.com/pstuifzand/chunkview/internal/storage"
	"github.com/pstuifzand/chunkview/internal/theme"
	"github.com/pstuifzand/chunkview/internal/ui"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple command",
			input:    "collapse",
			expected: []string{"collapse"},
		},
		{
			name:     "command with arguments",
			input:    "expand c1 c2",
			expected: []string{"expand", "c1", "c2"},
		},
		{
			name:     "double quoted string",
			input:    `fold "hello there"`,
			expected: []string{"fold", "hello there"},
		},
		{
			name:     "single quoted string",
			input:    "fold 'hello there'",
			expected: []string{"fold", "hello there"},
		},
		{
			name:     "mixed quotes",
			input:    `fold "General Kenobi" and more`,
			expected: []string{"fold", "General Kenobi", "and", "more"},
		},
		{
			name:     "escaped quotes",
			input:    `set key "value with \"quotes\""`,
			expected: []string{"set", "key", `value with "quotes"`},
		},
		{
			name:     "escaped backslash",
			input:    `path "C:\\Users\\test"`,
			expected: []string{"path", `C:\Users\test`},
		},
		{
			name:     "multiple spaces",
			input:    "command    with    spaces",
			expected: []string{"command", "with", "spaces"},
		},
		{
			name:     "tabs and spaces",
			input:    "command\twith\t  mixed",
			expected: []string{"command", "with", "mixed"},
		},
		{
			name:     "empty quoted string",
			input:    `command ""`,
			expected: []string{"command", ""},
		},
		{
			name:     "query with special characters",
			input:    `fold "@role=user /^a.*b$/"`,
			expected: []string{"fold", "@role=user /^a.*b$/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseCommand(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("Expected %d parts, got %d. Input: %q", len(tt.expected), len(result), tt.input)
				return
			}
			for i, part := range result {
				if part != tt.expected[i] {
					t.Errorf("Part %d: expected %q, got %q. Input: %q", i, tt.expected[i], part, tt.input)
				}
			}
		})
	}
}

func testDocument(texts ...string) *model.Document {
	root := &model.Element{ID: "root", Type: "prompt"}
	root.AddChild(&model.Element{ID: "e1", Type: "static"})
	root.AddChild(&model.Element{ID: "e2", Type: "param"})
	var chunks []model.Chunk
	for i, text := range texts {
		el := "e1"
		if i >= len(texts)/2 {
			el = "e2"
		}
		chunks = append(chunks, model.NewTextChunk("c"+string(rune('1'+i)), el, text))
	}
	return model.NewDocument(root, chunks...)
}

func writeDocument(t *testing.T, name string, doc *model.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, storage.NewJSONStore(path).Save(doc))
	return path
}

func newTestApp(t *testing.T, withBefore bool) (*App, tcell.SimulationScreen) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	after := testDocument("alpha one", "alpha two", "beta three", "beta four", "gamma five", "gamma six")
	opts := Options{DocPath: writeDocument(t, "after.json", after)}
	if withBefore {
		before := testDocument("alpha one", "alpha 2", "beta three", "beta four", "gamma five", "gamma six")
		opts.BeforePath = writeDocument(t, "before.json", before)
	}

	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	opts.Config = cfg

	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := ui.NewScreenFrom(sim, theme.Default())
	require.NoError(t, err)
	sim.SetSize(80, 6)
	opts.Screen = screen

	a, err := NewApp(opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, sim
}

func press(a *App, keys string) {
	for _, r := range keys {
		a.handleRawEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
		a.flush()
	}
}

func pressKey(a *App, key tcell.Key) {
	a.handleRawEvent(tcell.NewEventKey(key, 0, tcell.ModNone))
	a.flush()
}

func TestAbortReleasesSyncAndKeepsCallerScreen(t *testing.T) {
	a, sim := newTestApp(t, false)

	err := a.addPanes(a.panes)
	require.ErrorIs(t, err, scrollsync.ErrDuplicateView)

	a.abort(false)
	assert.ErrorIs(t, a.sync.AddView(a.panes[0]), scrollsync.ErrDestroyed)

	a.render()
	assert.Contains(t, simRow(sim, 5), "NORMAL", "caller screen stays usable")
}

func TestNewAppLayout(t *testing.T) {
	a, _ := newTestApp(t, false)

	lit, ren := a.panes[0], a.panes[1]
	assert.Equal(t, 3.0, lit.ViewportHeight())
	assert.Equal(t, 6.0, lit.ContentHeight(), "one row per chunk")
	assert.True(t, ren.Visible())
	assert.Len(t, a.ctrl.VisibleSequence(), 6)
}

func TestNewAppMissingDocument(t *testing.T) {
	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	_, err = NewApp(Options{DocPath: filepath.Join(t.TempDir(), "nope.json"), Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load document")
}

func TestScrollKeepsPanesInSync(t *testing.T) {
	a, _ := newTestApp(t, false)
	lit, ren := a.panes[0], a.panes[1]

	press(a, "jj")

	assert.Equal(t, 2.0, lit.ScrollTop())
	anchor, ok := a.sync.LastAnchor()
	require.True(t, ok)
	assert.Equal(t, "c3", anchor.ChunkID)
	assert.Equal(t, 0.0, anchor.Progress)

	rects := ren.Anchors("c3")
	require.NotEmpty(t, rects)
	assert.Equal(t, rects[0].Rects[0].Top, ren.ScrollTop())
	assert.Equal(t, literalPaneID, a.sync.ActiveSource())

	press(a, "gg")
	assert.Equal(t, 0.0, lit.ScrollTop())
}

func TestQueryStagesAndCollapses(t *testing.T) {
	a, _ := newTestApp(t, false)

	press(a, "/el:e2")
	assert.True(t, a.query.IsActive())
	pressKey(a, tcell.KeyEnter)
	assert.False(t, a.query.IsActive())
	require.Len(t, a.ctrl.Selections(), 1)

	press(a, "zc")
	groups := a.ctrl.CollapsedGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"c4", "c5", "c6"}, groups[0].Children)
	assert.Equal(t, 4.0, a.panes[0].ContentHeight(), "group renders as one row")

	press(a, ":expandall")
	pressKey(a, tcell.KeyEnter)
	assert.Empty(t, a.ctrl.CollapsedGroups())
	assert.Equal(t, 6.0, a.panes[0].ContentHeight())
}

func TestMarkStagesRange(t *testing.T) {
	a, _ := newTestApp(t, false)

	press(a, "v")
	assert.Equal(t, "c1", a.mark)
	press(a, "jjv")
	assert.Empty(t, a.mark)
	assert.Contains(t, a.statusMsg, "Staged 3 entries")

	press(a, "zc")
	groups := a.ctrl.CollapsedGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"c1", "c2", "c3"}, groups[0].Children)

	press(a, "gg")
	assert.Equal(t, groups[0].ID, a.panes[0].TopEntry())
	press(a, "zo")
	assert.Empty(t, a.ctrl.CollapsedGroups())
}

func TestOverlappingQueryReportsConflict(t *testing.T) {
	a, _ := newTestApp(t, false)

	a.StageQuery("gamma")
	require.Len(t, a.ctrl.Selections(), 1)
	a.StageQuery("alpha | gamma")
	assert.Equal(t, "Query overlaps a staged selection", a.statusMsg)
	assert.Len(t, a.ctrl.Selections(), 1, "a conflicting query stages nothing")

	press(a, "zx")
	assert.Empty(t, a.ctrl.Selections())
}

func TestCommands(t *testing.T) {
	a, _ := newTestApp(t, false)

	a.handleCommand("fold beta")
	require.Len(t, a.ctrl.Selections(), 1)
	a.handleCommand("collapse")
	groups := a.ctrl.CollapsedGroups()
	require.Len(t, groups, 1)

	a.handleCommand("expand c3")
	assert.Empty(t, a.ctrl.CollapsedGroups())

	a.handleCommand("expand nope")
	assert.Contains(t, a.statusMsg, "Failed to expand")

	a.handleCommand("set diff.granularity char")
	assert.Equal(t, "char", a.cfg.Get("diff.granularity"))
	a.handleCommand("get diff.granularity")
	assert.Equal(t, `diff.granularity = "char"`, a.statusMsg)

	out := filepath.Join(t.TempDir(), "view.md")
	a.handleCommand("export " + out)
	assert.Equal(t, "Exported to "+out, a.statusMsg)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- alpha one")

	a.handleCommand("bogus")
	assert.Equal(t, "Unknown command: bogus", a.statusMsg)

	a.handleCommand("q")
	assert.True(t, a.quit)
}

func TestRemoteCommands(t *testing.T) {
	a, _ := newTestApp(t, false)

	a.handleRemote(socket.Message{Command: socket.CommandRun, Text: "fold el:e1"})
	a.handleRemote(socket.Message{Command: socket.CommandRun, Text: "collapse"})
	a.flush()

	msg := socket.Message{Command: socket.CommandState, ResponseChan: make(chan *socket.Response, 1)}
	a.handleRemote(msg)
	response := <-msg.ResponseChan

	require.True(t, response.Success)
	require.Len(t, response.Visible, 4)
	assert.Equal(t, []string{"c4", "c5", "c6"}, response.Visible[1:])
	assert.Equal(t, []string{"c1", "c2", "c3"}, response.Groups[response.Visible[0]])
}

func TestSinglePaneToggle(t *testing.T) {
	a, _ := newTestApp(t, false)

	press(a, "s")
	assert.False(t, a.panes[1].Visible())
	pressKey(a, tcell.KeyTab)
	assert.Equal(t, 0, a.active, "tab is ignored with one pane")

	press(a, "s")
	assert.True(t, a.panes[1].Visible())
	pressKey(a, tcell.KeyTab)
	assert.Equal(t, 1, a.active)
}

func TestDiffOverlay(t *testing.T) {
	a, _ := newTestApp(t, false)
	press(a, "d")
	assert.False(t, a.diffView.IsVisible())
	assert.Contains(t, a.statusMsg, "No before document")

	b, _ := newTestApp(t, true)
	require.NotNil(t, b.report)
	assert.True(t, b.report.HasChanges())

	press(b, "d")
	assert.True(t, b.diffView.IsVisible())
	b.render()
	pressKey(b, tcell.KeyEscape)
	assert.False(t, b.diffView.IsVisible())

	b.handleCommand("diff")
	assert.NotEmpty(t, b.diffView.Lines())
}

func TestRenderDrawsPanesAndStatus(t *testing.T) {
	a, sim := newTestApp(t, false)
	a.render()

	assert.Contains(t, simRow(sim, 0), "Source (literal)")
	assert.Contains(t, simRow(sim, 0), "Rendered (rendered)")
	assert.Contains(t, simRow(sim, 1), "e1│ alpha one")
	assert.Contains(t, simRow(sim, 5), "NORMAL")
	assert.Contains(t, simRow(sim, 5), "6/6 chunks, 0 folds")
}

func TestHelpToggle(t *testing.T) {
	a, sim := newTestApp(t, false)

	press(a, "?")
	assert.True(t, a.help.IsVisible())
	lines := strings.Join(a.help.GetKeybindings(), "\n")
	assert.Contains(t, lines, "zc")
	assert.Contains(t, lines, ":expandall")

	a.render()
	_, _, h := sim.GetContents()
	assert.Equal(t, 6, h)

	press(a, "j")
	assert.Equal(t, 0.0, a.panes[0].ScrollTop(), "help swallows keys")
	press(a, "?")
	assert.False(t, a.help.IsVisible())
}

func simRow(sim tcell.SimulationScreen, y int) string {
	cells, w, _ := sim.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		cell := cells[y*w+x]
		if len(cell.Runes) > 0 {
			sb.WriteString(string(cell.Runes))
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}
