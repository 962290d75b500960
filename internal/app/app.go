// Package app runs the interactive two-pane viewer: a literal and a
// rendered view of one chunked document, folded together and kept at the
// same scroll position.
package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/diff"
	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/history"
	"github.com/pstuifzand/chunkview/internal/model"
	"github.com/pstuifzand/chunkview/internal/scrollsync"
	"github.com/pstuifzand/chunkview/internal/socket"
	"github.com/pstuifzand/chunkview/internal/storage"
	"github.com/pstuifzand/chunkview/internal/ui"
)

const (
	literalPaneID  = "literal"
	renderedPaneID = "rendered"
	tickInterval   = 50 * time.Millisecond
)

// Options configures a new App
type Options struct {
	DocPath string
	// BeforePath optionally names an older version of the document. Changed
	// chunks are highlighted and the diff overlay becomes available.
	BeforePath string
	Config     *config.Config
	// Screen replaces the terminal, e.g. with a simulation screen in tests
	Screen *ui.Screen
	// Remote starts a Unix socket server that accepts viewer commands
	Remote bool
}

// App is the main application controller
type App struct {
	screen *ui.Screen
	cfg    *config.Config

	doc        *model.Document
	before     *model.Document
	docPath    string
	beforePath string
	report     *diff.Report

	ctrl  *folding.Controller
	sched *scrollsync.ManualScheduler
	sync  *scrollsync.Manager

	panes  []*ui.Pane
	active int
	single bool

	// pendingScroll queues scroll events until the current handler returns
	pendingScroll []string
	layoutDirty   bool
	mark          string

	query    *ui.Prompt
	command  *ui.Prompt
	help     *ui.HelpScreen
	diffView *ui.DiffViewWidget

	keybindings        []KeyBinding
	pendingKeybindings []PendingKeyBinding
	pendingKey         rune

	statusMsg  string
	statusTime time.Time
	quit       bool
	debugMode  bool
	lastTick   time.Time

	server *socket.Server
}

// NewApp loads the documents and wires folding, scroll sync and the panes
func NewApp(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	doc, err := storage.NewJSONStore(opts.DocPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	var report *diff.Report
	var before *model.Document
	if opts.BeforePath != "" {
		before, err = storage.NewJSONStore(opts.BeforePath).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load before document: %w", err)
		}
		report = diff.DiffDocuments(before, doc, cfg.DiffOptions())
	}

	ctrl, err := folding.NewFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create folding controller: %w", err)
	}
	sched := scrollsync.NewManualScheduler()
	mgr, err := scrollsync.New(ctrl, sched, cfg.SyncOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create scroll sync: %w", err)
	}

	screen := opts.Screen
	ownScreen := screen == nil
	if ownScreen {
		if screen, err = ui.NewScreen(cfg); err != nil {
			mgr.Destroy()
			return nil, fmt.Errorf("failed to create screen: %w", err)
		}
	}

	a := &App{
		screen:     screen,
		cfg:        cfg,
		doc:        doc,
		before:     before,
		docPath:    opts.DocPath,
		beforePath: opts.BeforePath,
		report:     report,
		ctrl:       ctrl,
		sched:      sched,
		sync:       mgr,
		help:       ui.NewHelpScreen(),
		diffView:   ui.NewDiffViewWidget(),
		statusMsg:  "Ready",
		statusTime: time.Now(),
	}
	a.query = ui.NewPrompt("/", a.loadHistory("fold.toml"))
	a.command = ui.NewPrompt(":", a.loadHistory("command.toml"))

	a.panes = []*ui.Pane{
		ui.NewPane(literalPaneID, "Source", ui.PaneLiteral, doc, ctrl),
		ui.NewPane(renderedPaneID, "Rendered", ui.PaneRendered, doc, ctrl),
	}
	if err := a.addPanes(a.panes); err != nil {
		a.abort(ownScreen)
		return nil, err
	}
	ctrl.AddClient(folding.ClientFunc(func(ev folding.Event, _ folding.State) {
		a.layoutDirty = true
		log.Printf("folding: %s groups=%v absorbed=%v", ev.Type, ev.GroupIDs, ev.Absorbed)
	}))

	a.keybindings = a.InitializeKeybindings()
	a.pendingKeybindings = a.InitializePendingKeybindings()
	a.help.SetKeybindings(a.helpEntries())
	a.help.SetCommands(commandHelp)

	if opts.Remote {
		server, err := socket.NewServer(os.Getpid())
		if err != nil {
			log.Printf("remote control disabled: %v", err)
		} else {
			a.server = server
			server.Start()
		}
	}

	a.resize()
	a.flush()
	return a, nil
}

// addPanes wires panes to the scroll sync manager
func (a *App) addPanes(panes []*ui.Pane) error {
	for _, p := range panes {
		p.SetNotify(a.queueScroll)
		if a.report != nil {
			p.SetHighlights(ui.ChunkHighlights(a.report.Rendered, a.screen.Theme))
		}
		if err := a.sync.AddView(p); err != nil {
			return fmt.Errorf("failed to add view %s: %w", p.ID(), err)
		}
	}
	return nil
}

// abort releases what NewApp set up before it failed. A screen passed in by
// the caller stays open.
func (a *App) abort(ownScreen bool) {
	a.sync.Destroy()
	if ownScreen && a.screen != nil {
		a.screen.Close()
	}
}

func (a *App) loadHistory(filename string) *ui.History {
	manager, err := history.NewManager()
	if err != nil {
		log.Printf("history not persisted: %v", err)
		return ui.NewHistory(50)
	}
	h, err := ui.NewHistoryWithManager(50, manager, filename)
	if err != nil {
		log.Printf("failed to load history %s: %v", filename, err)
	}
	return h
}

// Run starts the main event loop
func (a *App) Run() error {
	defer a.Close()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			event := a.screen.PollEvent()
			if event == nil {
				close(eventChan)
				return
			}
			eventChan <- event
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	a.lastTick = time.Now()

	var remote <-chan socket.Message
	if a.server != nil {
		remote = a.server.Messages()
	}

	for !a.quit {
		select {
		case msg := <-remote:
			a.handleRemote(msg)
			a.flush()
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			a.handleRawEvent(ev)
			a.flush()
		case now := <-ticker.C:
			a.tick(now.Sub(a.lastTick))
			a.lastTick = now
			a.render()
		}
	}
	return nil
}

// Close tears down scroll sync, the socket server and the screen
func (a *App) Close() error {
	a.sync.Destroy()
	if a.server != nil {
		a.server.Stop()
		a.server = nil
	}
	if a.screen != nil {
		return a.screen.Close()
	}
	return nil
}

// tick advances scheduler time and runs due frames
func (a *App) tick(elapsed time.Duration) {
	a.sched.Advance(elapsed)
	a.flush()
}

// flush brings layouts, scroll sync and queued scroll events up to date
func (a *App) flush() {
	if a.layoutDirty {
		a.layoutDirty = false
		for _, p := range a.panes {
			p.Layout()
		}
	}
	a.drainScroll()
	if a.sched.RunFrames() > 0 {
		a.drainScroll()
	}
}

func (a *App) queueScroll(viewID string) {
	a.pendingScroll = append(a.pendingScroll, viewID)
}

func (a *App) drainScroll() {
	for len(a.pendingScroll) > 0 {
		id := a.pendingScroll[0]
		a.pendingScroll = a.pendingScroll[1:]
		a.sync.HandleScroll(id)
	}
}

// resize recomputes pane sizes from the screen
func (a *App) resize() {
	width, height := a.screen.Size()
	contentHeight := max(height-3, 1)

	a.panes[1].SetHidden(a.single)
	if a.single {
		a.active = 0
	}

	paneWidth := width
	if !a.single {
		paneWidth = max((width-1)/2, 1)
	}
	for _, p := range a.panes {
		if p.Resize(paneWidth, contentHeight) {
			p.Layout()
		}
		a.sync.MarkDirty(p.ID(), scrollsync.ReasonResize)
	}
}

// render draws the current state to the screen
func (a *App) render() {
	a.screen.Clear()
	width, height := a.screen.Size()
	selected := a.selectedIDs()

	paneWidth := width
	if !a.single {
		paneWidth = max((width-1)/2, 1)
	}
	for i, p := range a.panes {
		if !p.Visible() {
			continue
		}
		x := i * (paneWidth + 1)
		p.Draw(a.screen, x, 0, i == a.active, selected)
		if i == 0 && !a.single {
			for y := 0; y < height-2; y++ {
				a.screen.SetCell(paneWidth, y, '│', a.screen.PaneBorderStyle(false))
			}
		}
	}

	if a.query.IsActive() {
		a.query.Render(a.screen, height-2)
	}
	if a.command.IsActive() {
		a.command.Render(a.screen, height-2)
	}
	a.renderStatus(width, height-1)

	a.diffView.Render(a.screen)
	a.help.Render(a.screen)
	a.screen.Show()
}

func (a *App) renderStatus(width, y int) {
	mode := " NORMAL "
	if a.mark != "" {
		mode = " MARK "
	}
	x := a.screen.DrawString(0, y, mode, a.screen.StatusModeStyle())

	visible := a.ctrl.VisibleSequence()
	info := fmt.Sprintf(" %d/%d chunks, %d folds", len(visible), len(a.ctrl.OriginalSequence()), len(a.ctrl.CollapsedGroups()))
	if src := a.sync.ActiveSource(); src != "" {
		info += " | source " + src
	}
	if a.debugMode {
		n, reasons := a.sync.Rebuilds()
		info += fmt.Sprintf(" | rebuilds %d (%s)", n, reasons)
	}
	if a.statusMsg != "" && time.Since(a.statusTime) <= 3*time.Second {
		info += " | " + a.statusMsg
	}
	a.screen.DrawStringLimited(x, y, ui.PadStringToWidth(info, width-x), width-x, a.screen.StatusMessageStyle())
}

// selectedIDs returns the visible entries covered by staged selections
func (a *App) selectedIDs() map[string]bool {
	selected := make(map[string]bool)
	original := a.ctrl.OriginalSequence()
	for _, r := range a.ctrl.Selections() {
		for _, id := range original[r.Start:r.End] {
			selected[id] = true
		}
	}
	for _, g := range a.ctrl.CollapsedGroups() {
		if len(g.Children) > 0 && selected[g.Children[0]] {
			selected[g.ID] = true
		}
	}
	return selected
}

// handleRawEvent processes raw input events
func (a *App) handleRawEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch {
	case a.command.IsActive():
		if cmd, done := a.command.HandleKey(ev); done {
			a.handleCommand(cmd)
		}
	case a.query.IsActive():
		if q, done := a.query.HandleKey(ev); done && q != "" {
			a.StageQuery(q)
		}
	case a.diffView.IsVisible():
		a.diffView.HandleKeyEvent(ev)
	case a.help.IsVisible():
		if ev.Key() == tcell.KeyEscape || ev.Rune() == '?' {
			a.help.Toggle()
		}
	default:
		a.handleKeypress(ev)
	}
}

// activePane returns the pane that receives scroll keys
func (a *App) activePane() *ui.Pane {
	return a.panes[a.active]
}

// SetStatus sets the status message
func (a *App) SetStatus(msg string) {
	a.statusMsg = msg
	a.statusTime = time.Now()
	log.Printf("status: %s", msg)
}

// Quit signals the app to quit
func (a *App) Quit() {
	a.quit = true
}

// SetDebugMode enables or disables debug mode
func (a *App) SetDebugMode(debug bool) {
	a.debugMode = debug
}
